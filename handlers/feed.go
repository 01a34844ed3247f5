// handlers/feed.go - Live activity feed over websocket
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedUpgrade gates the feed route to genuine websocket upgrades.
func FeedUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// FeedSocket streams activity events (new echoes, plays, grants) to
// the client until it disconnects. Push only; inbound messages are
// drained solely to detect the close.
var FeedSocket = websocket.New(func(conn *websocket.Conn) {
	events := feedHub.Subscribe()
	defer feedHub.Unsubscribe(events)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
})
