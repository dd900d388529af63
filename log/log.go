package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/cache"
	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/bwmarrin/discordgo"
)

// Sinks selects where log output is mirrored besides the console.
type Sinks struct {
	Redis   *cache.Client
	Discord config.DiscordConfig
}

var closers []func()

// Init routes the standard logger to the console plus any configured sinks.
func Init(sinks Sinks) error {
	writers := []io.Writer{os.Stderr}

	if sinks.Redis != nil {
		writers = append(writers, cache.NewLogWriter(sinks.Redis))
	}

	if sinks.Discord.Token != "" && sinks.Discord.LogChannelID != "" {
		s, err := discordgo.New("Bot " + sinks.Discord.Token)
		if err != nil {
			return fmt.Errorf("could not create discord log session: %w", err)
		}
		dw := newDiscordWriter(s, sinks.Discord.LogChannelID)
		writers = append(writers, dw)
		closers = append(closers, dw.Close)
	}

	log.SetOutput(io.MultiWriter(writers...))
	log.SetFlags(log.LstdFlags)
	return nil
}

// Close flushes and stops the asynchronous sinks.
func Close() {
	for _, c := range closers {
		c()
	}
	closers = nil
}

// callerInfo returns "dir/file.go:line" for the caller skip frames up.
func callerInfo(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	parts := strings.Split(file, "/")
	if len(parts) > 2 {
		file = strings.Join(parts[len(parts)-2:], "/")
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Error logs an error with the caller location.
func Error(context string, err error) {
	log.Printf("[ERROR] in %s: %s: %v", callerInfo(2), context, err)
}

// Warn logs a recoverable problem with the caller location.
func Warn(context string, err error) {
	log.Printf("[WARN] in %s: %s: %v", callerInfo(2), context, err)
}

// Fatal logs an error and then exits the program.
func Fatal(context string, err error) {
	log.Printf("[FATAL] in %s: %s: %v", callerInfo(2), context, err)
	Close()
	os.Exit(1)
}
