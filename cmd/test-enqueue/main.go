// test-enqueue pushes a request for an existing session onto the shared
// queue, so the worker can be exercised without the API in front of it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/haggle/internal/services/queue"
	queuePkg "github.com/jwebster45206/haggle/pkg/queue"
)

func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL")
	sessionFlag := flag.String("session", "", "Session ID to target (required)")
	message := flag.String("message", "Would you take forty gold for it?", "Player message for a chat request")
	next := flag.Bool("next", false, "Enqueue a next-client request instead of a chat message")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sessionID, err := uuid.Parse(*sessionFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "a valid -session is required: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := queue.NewClient(ctx, *redisURL, log)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()
	q := queue.NewRequestQueue(client)

	req := queuePkg.NewChatRequest(sessionID, *message)
	if *next {
		req = queuePkg.NewNextClientRequest(sessionID)
	}
	if err := q.EnqueueRequest(ctx, req); err != nil {
		log.Error("Failed to enqueue request", "error", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Enqueued %s request: %s\n", req.Type, req.RequestID)

	depth, err := q.Depth(ctx)
	if err != nil {
		log.Error("Failed to get queue depth", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\n📊 Queue depth: %d requests\n", depth)
	fmt.Println("\n💡 Start the worker to process them: go run ./cmd/worker")
}
