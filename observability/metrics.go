// Package observability exposes prometheus metrics and the process health snapshot.
package observability

import (
	"net/http"
	"room-chat/domain/event"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "room_chat"

// Collector records chat metrics in a prometheus registry.
// It satisfies event.Metrics for the telemetry handlers.
type Collector struct {
	broadcasts      *prometheus.CounterVec
	deliveryFailed  *prometheus.CounterVec
	broadcastTime   prometheus.Histogram
	workerRestarts  *prometheus.CounterVec
	channelUsage    *prometheus.GaugeVec
	censoredWords   *prometheus.CounterVec
	connections     prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	commands        *prometheus.CounterVec
	processRSS      prometheus.Gauge
	processCPU      prometheus.Gauge
	processRoutines prometheus.Gauge
}

var _ event.Metrics = (*Collector)(nil)

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_total",
			Help:      "Events broadcast to rooms, by event type",
		}, []string{"event"}),
		deliveryFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failed_total",
			Help:      "Per subscriber deliveries that failed or timed out, by event type",
		}, []string{"event"}),
		broadcastTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "broadcast_duration_seconds",
			Help:      "Time spent delivering one event to every subscriber",
			Buckets:   prometheus.DefBuckets,
		}),
		workerRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_restarts_total",
			Help:      "Workers restarted after a panic",
		}, []string{"worker"}),
		channelUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channel_usage_ratio",
			Help:      "Length over capacity of internal channels",
		}, []string{"channel"}),
		censoredWords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "censored_words_total",
			Help:      "Forbidden words censored in messages",
		}, []string{"word"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live websocket connections",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by status code",
		}, []string{"status_code"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_commands_total",
			Help:      "Inbound websocket commands by action and outcome",
		}, []string{"action", "outcome"}),
		processRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Resident memory of the server process",
		}),
		processCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage of the server process",
		}),
		processRoutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Number of goroutines",
		}),
	}

	reg.MustRegister(
		c.broadcasts,
		c.deliveryFailed,
		c.broadcastTime,
		c.workerRestarts,
		c.channelUsage,
		c.censoredWords,
		c.connections,
		c.httpRequests,
		c.commands,
		c.processRSS,
		c.processCPU,
		c.processRoutines,
	)
	return c
}

func (c *Collector) ObserveDelivery(eventType event.Type, sinks, failed int, duration time.Duration) {
	c.broadcasts.WithLabelValues(string(eventType)).Inc()
	if failed > 0 {
		c.deliveryFailed.WithLabelValues(string(eventType)).Add(float64(failed))
	}
	c.broadcastTime.Observe(duration.Seconds())
}

func (c *Collector) IncWorkerRestart(workerName string) {
	c.workerRestarts.WithLabelValues(workerName).Inc()
}

func (c *Collector) SetChannelUsage(channelName string, length, capacity int) {
	if capacity <= 0 {
		return
	}
	c.channelUsage.WithLabelValues(channelName).Set(float64(length) / float64(capacity))
}

func (c *Collector) IncCensored(word string) {
	c.censoredWords.WithLabelValues(word).Inc()
}

func (c *Collector) ConnectionOpened() { c.connections.Inc() }

func (c *Collector) ConnectionClosed() { c.connections.Dec() }

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordCommand(action, outcome string) {
	c.commands.WithLabelValues(action, outcome).Inc()
}

func (c *Collector) RecordProcess(stats ProcessStats) {
	c.processRSS.Set(float64(stats.RSSBytes))
	c.processCPU.Set(stats.CPUPercent)
	c.processRoutines.Set(float64(stats.Goroutines))
}

// Handler returns the HTTP handler for prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
