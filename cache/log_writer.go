package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLogs = 100 // Max number of log entries to store in Redis

// LogWriter is an io.Writer that mirrors log output into a capped Redis list.
type LogWriter struct {
	client   *Client
	fallback io.Writer
}

// NewLogWriter creates a new LogWriter.
func NewLogWriter(client *Client) *LogWriter {
	return &LogWriter{
		client:   client,
		fallback: os.Stderr,
	}
}

// Write implements the io.Writer interface.
func (lw *LogWriter) Write(p []byte) (n int, err error) {
	// The input from the log package includes a newline, which we trim.
	logEntry := strings.TrimRight(string(p), "\n")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := lw.client.AddToList(ctx, LogsKey, logEntry, maxLogs); err != nil {
		// Write straight to stderr; going through log would recurse into this writer.
		_, _ = fmt.Fprintf(lw.fallback, "[ERROR] Failed to write log to Redis: %v\n", err)
	}
	return len(p), nil
}
