package engine

import (
	"context"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/gridml/internal/ctxlog"
)

// Monitor subscribes to the engine's socket.io event namespace and relays
// progress and log events for one session to the context logger. It is a
// pure observer: a monitor failure never fails the execution it watches.
type Monitor struct {
	endpoint  string
	namespace string
}

// NewMonitor builds a monitor from the profile settings. Returns nil when
// the profile has no events namespace configured.
func NewMonitor(cfg *Config) *Monitor {
	if cfg.EventsNamespace == "" {
		return nil
	}
	return &Monitor{endpoint: cfg.Endpoint(), namespace: cfg.EventsNamespace}
}

// progressEvent is the payload shape of the engine's "progress" events.
type progressEvent struct {
	ExecutionID string  `json:"execution_id"`
	Operator    string  `json:"operator"`
	Fraction    float64 `json:"fraction"`
}

// Watch connects and relays events for the given session until the context
// is cancelled. It blocks; run it in its own goroutine alongside Execute.
func (m *Monitor) Watch(ctx context.Context, sessionID string) {
	logger := ctxlog.FromContext(ctx).With("monitor", m.endpoint, "session", sessionID)

	opts := socket.DefaultOptions()
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(m.endpoint, opts)
	io := manager.Socket(m.namespace, opts)
	defer io.Disconnect()

	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Monitor connected.", "sid", io.Id())
		io.Emit("watch", sessionID)
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		logger.Warn("Monitor connection failed.", "error", errs)
	})

	io.On(types.EventName("progress"), func(data ...any) {
		if len(data) == 0 {
			return
		}
		ev, ok := decodeProgress(data[0])
		if !ok {
			logger.Debug("Unrecognized progress payload.", "payload", data[0])
			return
		}
		logger.Info("Execution progress.", "execution", ev.ExecutionID, "operator", ev.Operator, "fraction", ev.Fraction)
	})

	io.On(types.EventName("log"), func(data ...any) {
		if len(data) == 0 {
			return
		}
		logger.Info("Engine log.", "message", data[0])
	})

	io.Connect()
	<-ctx.Done()
	logger.Debug("Monitor stopped.")
}

func decodeProgress(v any) (progressEvent, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return progressEvent{}, false
	}
	var ev progressEvent
	if s, ok := m["execution_id"].(string); ok {
		ev.ExecutionID = s
	}
	if s, ok := m["operator"].(string); ok {
		ev.Operator = s
	}
	if f, ok := m["fraction"].(float64); ok {
		ev.Fraction = f
	}
	return ev, true
}
