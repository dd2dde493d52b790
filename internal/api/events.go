package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/colornode/internal/events"
)

// registerSSERoutes registers the colour event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Colour changes and actuation failures. The stored colour is sent first.",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"color-changed":    events.ColorChangedEvent{},
		"actuation-failed": events.ActuationFailedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.ColorChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ActuationFailedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		current := s.colors.Current()
		d, _ := s.colors.Duties()
		if err := send.Data(events.ColorChangedEvent{
			Color:     current.Hex(),
			Anode:     d.Anode,
			Cathode:   d.Cathode,
			Source:    "snapshot",
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
