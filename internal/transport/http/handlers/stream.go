package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/baechuer/community-events/internal/logger"
	"github.com/baechuer/community-events/internal/transport/http/response"
)

const streamKeepAlive = 25 * time.Second

// CountStream pushes the event count as server-sent events:
//
//	event: count
//	data: {"count":3}
//
// The first frame is the current count; later frames follow every change.
func (h *EventsHandler) CountStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	// only the latest value matters, so a slow client skips intermediate counts
	counts := make(chan int, 1)
	push := func(n int) {
		for {
			select {
			case counts <- n:
				return
			default:
				select {
				case <-counts:
				default:
				}
			}
		}
	}

	sub, err := h.svc.WatchCount(ctx, push)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	defer sub.Close()

	// long-lived response; lift the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("count stream: flush unsupported")
		return
	}

	ping := time.NewTicker(streamKeepAlive)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-counts:
			if _, err := fmt.Fprintf(w, "event: count\ndata: {\"count\":%d}\n\n", n); err != nil {
				return
			}
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
