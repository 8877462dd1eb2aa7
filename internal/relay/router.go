package relay

import (
	"encoding/json"
	"log/slog"

	"github.com/ayushi2910/video-streaming-platform/internal/metrics"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

// Router forwards negotiation messages between connections. It does not
// look inside payloads and does not check that sender and target share a
// room.
type Router struct {
	notifier Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewRouter(n Notifier, m *metrics.Metrics, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{notifier: n, metrics: m, log: log}
}

// Relay delivers {type, sender, payload} to target. A target that is not
// connected is dropped without telling the sender.
func (r *Router) Relay(msgType string, sender, target protocol.ConnID, payload json.RawMessage) bool {
	ok := r.notifier.Notify(target, &protocol.Message{
		Type:    msgType,
		Sender:  sender,
		Payload: payload,
	})
	if !ok {
		r.metrics.Dropped(metrics.DropUnknownTarget)
		r.log.Debug("Dropped signal for unknown target", "type", msgType, "sender", sender, "target", target)
		return false
	}

	r.metrics.Relayed(msgType)
	r.log.Debug("Relayed signal", "type", msgType, "sender", sender, "target", target)
	return true
}
