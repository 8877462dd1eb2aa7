// Package metrics exposes relay counters to Prometheus.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/process"
)

// DefaultSampleInterval is how often process CPU and memory are sampled.
const DefaultSampleInterval = 5 * time.Second

// Drop reasons.
const (
	DropUnknownTarget = "unknown_target"
	DropQueueFull     = "queue_full"
)

// Metrics holds the relay's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	connections prometheus.Gauge
	rooms       prometheus.Gauge
	joins       prometheus.Counter
	relayed     *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	cpuUsage    prometheus.Gauge
	memoryUsage prometheus.Gauge
}

// New creates and registers the relay metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meshroom_websocket_connections",
			Help: "Current number of websocket connections.",
		}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meshroom_rooms",
			Help: "Current number of non-empty rooms.",
		}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meshroom_room_joins_total",
			Help: "Room joins processed.",
		}),
		relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meshroom_signals_relayed_total",
			Help: "Negotiation messages forwarded to their target.",
		}, []string{"type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meshroom_messages_dropped_total",
			Help: "Messages the relay could not deliver.",
		}, []string{"reason"}),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meshroom_process_cpu_percent",
			Help: "Relay process CPU usage percentage.",
		}),
		memoryUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meshroom_process_rss_bytes",
			Help: "Relay process resident memory in bytes.",
		}),
	}

	m.registry.MustRegister(
		m.connections,
		m.rooms,
		m.joins,
		m.relayed,
		m.dropped,
		m.cpuUsage,
		m.memoryUsage,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) RoomCreated() {
	if m == nil {
		return
	}
	m.rooms.Inc()
}

func (m *Metrics) RoomDeleted() {
	if m == nil {
		return
	}
	m.rooms.Dec()
}

func (m *Metrics) Joined() {
	if m == nil {
		return
	}
	m.joins.Inc()
}

func (m *Metrics) Relayed(msgType string) {
	if m == nil {
		return
	}
	m.relayed.WithLabelValues(msgType).Inc()
}

func (m *Metrics) Dropped(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}

// SampleProcess updates the CPU and memory gauges every interval until ctx
// is done.
func (m *Metrics) SampleProcess(ctx context.Context, interval time.Duration) {
	if m == nil {
		return
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		slog.Warn("process metrics unavailable", "error", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.sample(proc)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Metrics) sample(proc *process.Process) {
	if cpu, err := proc.CPUPercent(); err == nil {
		m.cpuUsage.Set(cpu)
	}
	if mem, err := proc.MemoryInfo(); err == nil {
		m.memoryUsage.Set(float64(mem.RSS))
	}
}
