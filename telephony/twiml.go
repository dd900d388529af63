// Package telephony renders TwiML, classifies call statuses and places outbound calls.
package telephony

import (
	"encoding/xml"
	"fmt"
)

// ContentType is the media type of rendered TwiML.
const ContentType = "text/xml; charset=utf-8"

// Response is the root TwiML document. Verbs are rendered in order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// Say speaks text with Twilio's own voice.
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Language string   `xml:"language,attr,omitempty"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// Play streams an audio file to the caller.
type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

// Gather collects caller speech and posts it to Action.
type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr,omitempty"`
	Action        string   `xml:"action,attr,omitempty"`
	Method        string   `xml:"method,attr,omitempty"`
	Language      string   `xml:"language,attr,omitempty"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Timeout       int      `xml:"timeout,attr,omitempty"`
	Verbs         []any
}

// Redirect moves call control to another TwiML URL.
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Render marshals verbs into a TwiML document.
func Render(verbs ...any) (string, error) {
	out, err := xml.Marshal(Response{Verbs: verbs})
	if err != nil {
		return "", fmt.Errorf("could not render twiml: %w", err)
	}
	return xml.Header + string(out), nil
}

// SpeechGather is a speech-only Gather posting to action.
func SpeechGather(action, language string) Gather {
	return Gather{
		Input:         "speech",
		Action:        action,
		Method:        "POST",
		Language:      language,
		SpeechTimeout: "auto",
	}
}

// Listen returns a Gather on action followed by a Redirect to the same action,
// so a silent caller still produces a callback.
func Listen(action, language string) []any {
	return []any{
		SpeechGather(action, language),
		Redirect{Method: "POST", URL: action},
	}
}
