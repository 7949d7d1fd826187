// streamtest connects to a running notifier and prints every envelope it receives.
// Usage: go run ./cmd/streamtest --url ws://localhost:5000/ws --user 3 --role buyer
//
// Pings are answered automatically so the connection survives heartbeat sweeps.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bell24h/realtime/internal/model"
	"github.com/bell24h/realtime/internal/protocol"
)

func main() {
	url := flag.String("url", "ws://localhost:5000/ws", "notifier WebSocket URL")
	userID := flag.Int64("user", 0, "user ID to authenticate as (0 = stay anonymous)")
	role := flag.String("role", string(model.RoleBuyer), "role to authenticate with")
	verbose := flag.Bool("verbose", false, "print full envelope JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	ws, _, err := websocket.DefaultDialer.DialContext(dialCtx, *url, nil)
	cancel()
	if err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer ws.Close()
	logger.Info("connected", "url", *url)

	if *userID > 0 {
		if err := sendAuthenticate(ws, *userID, model.Role(*role)); err != nil {
			logger.Error("failed to authenticate", "error", err)
			os.Exit(1)
		}
	}

	// Close the socket on shutdown to unblock the read loop
	go func() {
		<-ctx.Done()
		logger.Info("received shutdown signal")
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		ws.Close()
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	stats := make(map[protocol.MessageType]int)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("connection lost", "error", err)
			}
			break
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Warn("received non-envelope frame", "size", len(data), "error", err)
			continue
		}
		stats[env.Type]++

		if env.Type == protocol.TypePing {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`)); err != nil {
				logger.Error("failed to send pong", "error", err)
			}
		}

		printEnvelope(env, data, *verbose)
	}

	logger.Info("shutdown complete", "received", stats)
}

func sendAuthenticate(ws *websocket.Conn, userID int64, role model.Role) error {
	payload, err := json.Marshal(protocol.Authenticate{UserID: userID, Role: role})
	if err != nil {
		return err
	}
	msg, err := json.Marshal(protocol.Envelope{
		Type:      protocol.TypeAuthenticate,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, msg)
}

func printEnvelope(env protocol.Envelope, raw []byte, verbose bool) {
	at := time.UnixMilli(env.Timestamp).Format(time.TimeOnly)

	if verbose {
		var pretty any
		json.Unmarshal(raw, &pretty)
		data, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Printf("[%s] %s\n", at, data)
		return
	}

	if len(env.Payload) == 0 {
		fmt.Printf("[%s] %s\n", at, env.Type)
		return
	}
	fmt.Printf("[%s] %s %s\n", at, env.Type, env.Payload)
}
