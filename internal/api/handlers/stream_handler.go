package handlers

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/engine"
	"github.com/topherchris420/signal-forge-pulse/internal/metrics"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

// Per-subscriber buffer; a subscriber that falls this far behind starts
// losing events rather than blocking the engine.
const subscriberBuffer = 16

// AlertStreamHub fans newly opened alerts out to websocket subscribers. It
// satisfies the engine's notifier so alerts stream the moment they persist.
type AlertStreamHub struct {
	mu          sync.RWMutex
	subscribers map[chan engine.AlertEvent]struct{}
}

func NewAlertStreamHub() *AlertStreamHub {
	return &AlertStreamHub{
		subscribers: make(map[chan engine.AlertEvent]struct{}),
	}
}

// NotifyAlert delivers the event to every subscriber without blocking.
func (h *AlertStreamHub) NotifyAlert(event engine.AlertEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("Alert stream subscriber too slow, dropping event",
				zap.String("alert_id", event.ID),
			)
		}
	}
}

func (h *AlertStreamHub) subscribe() chan engine.AlertEvent {
	ch := make(chan engine.AlertEvent, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	metrics.StreamSubscribers.Inc()
	return ch
}

func (h *AlertStreamHub) unsubscribe(ch chan engine.AlertEvent) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()

	metrics.StreamSubscribers.Dec()
}

// HandleConnection serves one subscriber. An optional organization_id query
// parameter narrows the stream to that organization's alerts.
func (h *AlertStreamHub) HandleConnection(c *websocket.Conn) {
	organizationID := c.Query("organization_id")

	logger.Info("Alert stream subscriber connected",
		zap.String("organization_id", organizationID),
	)

	ch := h.subscribe()
	done := make(chan struct{})

	defer func() {
		h.unsubscribe(ch)
		c.Close()
		logger.Info("Alert stream subscriber disconnected")
	}()

	go func() {
		defer close(done)
		// The read loop only exists to observe disconnects; subscribers do
		// not send anything meaningful.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event := <-ch:
			if organizationID != "" && event.OrganizationID != organizationID {
				continue
			}
			if err := c.WriteJSON(event); err != nil {
				logger.Debug("Failed to write alert event", zap.Error(err))
				return
			}
		}
	}
}
