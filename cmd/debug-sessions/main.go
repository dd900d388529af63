package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/EasterCompany/dex-telephony-service/cache"
	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/EasterCompany/dex-telephony-service/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	if client == nil {
		log.Fatalf("Redis is not configured; sessions are held in process memory")
	}
	defer func() { _ = client.Close() }()

	store := session.NewRedisStore(client.Client, cfg.Redis.SessionTTL())
	ids, err := store.IDs(ctx)
	if err != nil {
		log.Fatalf("Failed to list sessions: %v", err)
	}
	fmt.Printf("%d active session(s)\n", len(ids))

	for _, id := range ids {
		sess, err := store.Get(ctx, id)
		if err != nil {
			log.Printf("Failed to load session %s: %v", id, err)
			continue
		}
		fmt.Printf("\n--- Session: %s ---\n", id)
		fmt.Printf("Created: %s  Updated: %s\n", sess.CreatedAt.Format(time.RFC3339), sess.UpdatedAt.Format(time.RFC3339))
		for _, t := range sess.Turns {
			switch {
			case t.Original != "" && t.Original != t.Content:
				fmt.Printf("  - %s [%s]: %s (heard %q)\n", t.Role, t.Language, t.Content, t.Original)
			case t.Language != "":
				fmt.Printf("  - %s [%s]: %s\n", t.Role, t.Language, t.Content)
			default:
				fmt.Printf("  - %s: %s\n", t.Role, t.Content)
			}
		}
	}

	logs, err := client.GetListRange(ctx, cache.LogsKey, 0, 9)
	if err == nil && len(logs) > 0 {
		fmt.Printf("\n--- Recent logs ---\n")
		for _, l := range logs {
			fmt.Printf("  %s\n", l)
		}
	}
}
