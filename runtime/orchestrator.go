// Package runtime holds the live side of the chat: who is connected, which rooms
// they listen to, and how events reach them. It contains no business rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"room-chat/contract"
	"room-chat/domain/event"
	"room-chat/moderation"
	"room-chat/observability"
	"room-chat/runtime/workers"
	"strings"
	"sync"
	"time"
)

const telemetryChannelName = "telemetry"

type Config struct {
	SinkTimeout          time.Duration
	RestartInterval      time.Duration
	MetricInterval       time.Duration
	LatencyThreshold     time.Duration
	TelemetryBufferSize  int
	LowCapacityThreshold int
	ModerationEnabled    bool
	CharReplacement      rune
	CensoredWords        []string
}

// Orchestrator wires the connection registry, the event fan-out and the
// supervised background workers (telemetry, channel sampling, process stats).
type Orchestrator struct {
	mu              sync.Mutex
	log             *slog.Logger
	cfg             Config
	supervisor      contract.ISupervisor
	registry        *Registry
	sequencer       *Sequencer
	telemetryEvents chan event.Event
	metrics         *observability.Collector
	monitor         *observability.MonitoringManager
	fanout          *workers.EventFanout
	moderator       *moderation.Moderator
	started         bool
}

// NewOrchestrator prepares everything the services need before Start:
// the moderator is built eagerly so a broken word list fails at boot.
// monitor may be nil, process sampling is then disabled.
func NewOrchestrator(log *slog.Logger, cfg Config, registry *Registry,
	metrics *observability.Collector, monitor *observability.MonitoringManager,
	permanentSinks ...contract.EventSink) (*Orchestrator, error) {
	telemetryEvents := make(chan event.Event, cfg.TelemetryBufferSize)
	o := &Orchestrator{
		log:             log,
		cfg:             cfg,
		supervisor:      workers.NewSupervisor(log.With("component", "supervisor"), cfg.RestartInterval, telemetryEvents),
		registry:        registry,
		sequencer:       NewSequencer(),
		telemetryEvents: telemetryEvents,
		metrics:         metrics,
		monitor:         monitor,
	}

	if cfg.ModerationEnabled {
		moderator, err := o.prepareModeration()
		if err != nil {
			return nil, err
		}
		o.moderator = moderator
	}

	o.fanout = workers.NewEventFanout(
		log.With("component", "fanout"),
		permanentSinks,
		registry,
		telemetryEvents,
		cfg.SinkTimeout,
	)
	return o, nil
}

func (o *Orchestrator) Broadcaster() contract.Broadcaster { return o.fanout }

func (o *Orchestrator) Registry() *Registry { return o.registry }

func (o *Orchestrator) Sequencer() *Sequencer { return o.sequencer }

// Moderator is nil when moderation is disabled.
func (o *Orchestrator) Moderator() *moderation.Moderator { return o.moderator }

func (o *Orchestrator) Telemetry() chan<- event.Event { return o.telemetryEvents }

// prepareModeration loads censored words and builds the Aho-Corasick automaton.
func (o *Orchestrator) prepareModeration() (*moderation.Moderator, error) {
	data, err := moderation.NewEmbeddedLoader().LoadAll(moderation.DefaultCensoredPath, o.cfg.CensoredWords...)
	if err != nil {
		return nil, err
	}

	o.log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	o.log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	return moderation.NewModerator(data.Words, o.cfg.CharReplacement, o.log.With("component", "moderation"))
}

func (o *Orchestrator) prepareWorkers() []contract.Worker {
	handlers := []event.Handler{
		event.NewDeliveryHandler(o.log, o.metrics, o.cfg.LatencyThreshold),
		event.NewCensoredHandler(o.log, o.metrics),
		event.NewChannelCapacityHandler(o.log, o.metrics, o.cfg.LowCapacityThreshold),
		event.NewWorkerRestartedAfterPanicHandler(o.log, o.metrics),
	}
	res := []contract.Worker{
		workers.NewTelemetryWorker(o.log.With("component", "telemetry"), o.telemetryEvents, handlers),
		workers.NewChannelCapacityWorker(o.log.With("component", "channel_capacity"),
			[]workers.ChannelProbe{workers.Probe(telemetryChannelName, o.telemetryEvents)},
			o.telemetryEvents, o.cfg.MetricInterval),
	}
	if o.monitor != nil {
		res = append(res, workers.NewProcessStatsWorker(o.log.With("component", "process_stats"),
			o.monitor, o.registry, o.metrics.RecordProcess, o.cfg.MetricInterval))
	}
	return res
}

// Start registers the background workers and blocks while the supervisor runs them.
func (o *Orchestrator) Start(ctx context.Context) error {
	backgroundWorkers := o.prepareWorkers()

	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	o.started = true
	o.supervisor.Add(backgroundWorkers...)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "workers", len(backgroundWorkers))
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised workers. Live connections are closed by the transport.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
