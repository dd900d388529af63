package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

const (
	discordMaxLen    = 1900
	discordQueueSize = 64
)

type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// discordWriter forwards error lines to a Discord channel without blocking the caller.
type discordWriter struct {
	sender    messageSender
	channelID string
	queue     chan string
	done      chan struct{}

	mu     sync.Mutex
	closed bool
}

func newDiscordWriter(sender messageSender, channelID string) *discordWriter {
	w := &discordWriter{
		sender:    sender,
		channelID: channelID,
		queue:     make(chan string, discordQueueSize),
		done:      make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *discordWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if !strings.Contains(msg, "[ERROR]") && !strings.Contains(msg, "[FATAL]") {
		return len(p), nil
	}
	// To prevent log spam, we truncate long messages for Discord.
	if len(msg) > discordMaxLen {
		msg = msg[:discordMaxLen] + "..."
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return len(p), nil
	}
	select {
	case w.queue <- "```\n" + msg + "```":
	default:
		// Queue full; the console copy is still written.
	}
	return len(p), nil
}

func (w *discordWriter) run() {
	defer close(w.done)
	for msg := range w.queue {
		if _, err := w.sender.ChannelMessageSend(w.channelID, msg); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[ERROR] Failed to post log to Discord: %v\n", err)
		}
	}
}

// Close drains queued messages and stops the sender goroutine. Lines written
// afterwards are dropped.
func (w *discordWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}
