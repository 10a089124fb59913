package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nstclasses/tutor-api/utils/middleware"
	"github.com/nstclasses/tutor-api/utils/response"
	"github.com/nstclasses/tutor-api/utils/sse"
)

// keepaliveInterval is how often an SSE comment is written to detect dead
// clients and keep proxies from timing out the connection
const keepaliveInterval = 25 * time.Second

// Stream handles GET /chat/stream: a live subscription to the stream the
// caller's view resolves to, delivered as SSE. Each event carries the full
// current value of the subscribed path, starting with one immediately on
// connect. Admins streaming the private tab with no student selected get the
// whole private tree, which feeds the inbox.
func (h *ChatHandler) Stream(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var p viewParams
	if err := c.QueryParser(&p); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	path, ok := h.chat.StreamPath(h.buildView(c, user, p))
	if !ok {
		return response.BadRequest(c, "No chat stream selected")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	live := h.live
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Buffered so slow clients never block change fanout; each event
		// carries the full value, so dropping a stale one is harmless
		updates := make(chan json.RawMessage, 16)
		unsubscribe, err := live.Subscribe(ctx, path, func(value json.RawMessage) {
			for {
				select {
				case updates <- value:
					return
				default:
					select {
					case <-updates:
					default:
					}
				}
			}
		})
		if err != nil {
			_ = sse.SendError(w, err)
			return
		}
		defer unsubscribe()

		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case value := <-updates:
				if err := sse.SendSnapshot(w, value); err != nil {
					return
				}
			case <-keepalive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}
