// Package main provides a small client that listens on the notification
// WebSocket and prints every event it receives.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	host := flag.String("host", "localhost:5000", "API server host")
	token := flag.String("token", "", "JWT for the listening user (see `seed -tokens`)")
	duration := flag.Duration("duration", 0, "Stop after this long (0 waits for Ctrl-C)")
	flag.Parse()

	if *token == "" {
		log.Fatal("❌ -token is required")
	}

	u := url.URL{Scheme: "ws", Host: *host, Path: "/api/ws", RawQuery: "token=" + url.QueryEscape(*token)}
	log.Printf("🔌 Connecting to %s", u.Redacted())

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		log.Fatalf("❌ Dial failed: %v", err)
	}
	defer func() { _ = c.Close() }()
	log.Println("✅ Connected, waiting for notifications")

	var received atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("read: %v", err)
				}
				return
			}
			received.Add(1)
			var env envelope
			if err := json.Unmarshal(data, &env); err != nil {
				log.Printf("📨 %s", data)
				continue
			}
			log.Printf("📨 %s %s", env.Type, env.Payload)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}

	select {
	case <-done:
	case <-interrupt:
		log.Println("🛑 Interrupted by user")
	case <-timeout:
		log.Println("⏱️  Duration reached")
	}

	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	log.Printf("Received %d events", received.Load())
}
