package telephony

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/nyaruka/phonenumbers"
	"github.com/sethvargo/go-retry"
	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrInvalidNumber is returned for phone numbers that cannot be dialled.
var ErrInvalidNumber = errors.New("invalid phone number")

// NormalizeNumber validates raw and formats it as E.164. Numbers without a
// country code are read in defaultRegion.
func NormalizeNumber(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidNumber)
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %s", ErrInvalidNumber, raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// CallPlacer starts outbound calls.
type CallPlacer interface {
	PlaceCall(ctx context.Context, to string) (string, error)
}

type callCreator interface {
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

// TwilioCaller places calls through the Twilio REST API. Answered calls are
// pointed at the incoming voice webhook.
type TwilioCaller struct {
	api       callCreator
	from      string
	answerURL string
	statusURL string
	backoff   func() retry.Backoff
}

// NewTwilioCaller builds a caller from the twilio config and the public base URL.
func NewTwilioCaller(cfg config.TwilioConfig, publicBaseURL string) *TwilioCaller {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	base := strings.TrimRight(publicBaseURL, "/")
	return &TwilioCaller{
		api:       client.Api,
		from:      cfg.PhoneNumber,
		answerURL: base + "/voice/incoming",
		statusURL: base + "/voice/status",
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
		},
	}
}

// PlaceCall dials to and returns the call SID. Twilio 5xx responses are retried.
func (t *TwilioCaller) PlaceCall(ctx context.Context, to string) (string, error) {
	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetUrl(t.answerURL)
	params.SetMethod("POST")
	params.SetStatusCallback(t.statusURL)
	params.SetStatusCallbackMethod("POST")
	params.SetStatusCallbackEvent([]string{"initiated", "ringing", "answered", "completed"})

	var sid string
	err := retry.Do(ctx, t.backoff(), func(ctx context.Context) error {
		resp, err := t.api.CreateCall(params)
		if err != nil {
			var restErr *twclient.TwilioRestError
			if errors.As(err, &restErr) && restErr.Status >= 500 {
				return retry.RetryableError(err)
			}
			return err
		}
		if resp.Sid == nil {
			return errors.New("twilio returned no call sid")
		}
		sid = *resp.Sid
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("could not place call to %s: %w", to, err)
	}
	return sid, nil
}
