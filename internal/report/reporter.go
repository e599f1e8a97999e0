package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/llehouerou/sing/internal/errmsg"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics counts reported operations by outcome.
type Metrics struct {
	Operations *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sing",
				Name:      "operations_total",
				Help:      "Mutating operations by name and outcome",
			},
			[]string{"op", "outcome", "kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Operations)
	}
	return m
}

// Options configures a Reporter.
type Options struct {
	// NotifySuccess enables success notifications for operations that carry a label.
	NotifySuccess bool
}

// Reporter turns operation outcomes into log lines, UI alerts and
// notifications, and internal events.
type Reporter struct {
	log     zerolog.Logger
	events  Emitter
	metrics *Metrics
	opts    Options
}

// New creates a reporter. metrics may be nil.
func New(log zerolog.Logger, events Emitter, metrics *Metrics, opts Options) *Reporter {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Reporter{log: log, events: events, metrics: metrics, opts: opts}
}

// Failure logs err with its kind and cause and raises an alert with a short label.
func (r *Reporter) Failure(op errmsg.Op, err error) {
	kind := errmsg.KindOf(err)
	r.metrics.Operations.WithLabelValues(string(op), outcomeFailure, kind.String()).Inc()

	r.log.Error().
		Err(err).
		Str("op", string(op)).
		Str("kind", kind.String()).
		Msg("operation failed")

	r.events.Emit(Event{
		Kind:    KindAlert,
		Name:    EventAlert,
		Label:   errmsg.Label(op),
		Forward: true,
	})
}

// Success records a successful operation and, if enabled and label is not
// empty, raises a notification.
func (r *Reporter) Success(op errmsg.Op, label string) {
	r.metrics.Operations.WithLabelValues(string(op), outcomeSuccess, "").Inc()
	r.log.Debug().Str("op", string(op)).Msg("operation succeeded")

	if label == "" || !r.opts.NotifySuccess {
		return
	}
	r.events.Emit(Event{
		Kind:    KindNotification,
		Name:    EventNotification,
		Label:   label,
		Forward: true,
	})
}

// Report dispatches to Failure or Success and returns err unchanged.
func (r *Reporter) Report(op errmsg.Op, err error, successLabel string) error {
	if err != nil {
		r.Failure(op, err)
		return err
	}
	r.Success(op, successLabel)
	return nil
}

// Internal emits an event that never reaches the UI.
func (r *Reporter) Internal(name string, playlistID int64) {
	r.events.Emit(Event{Kind: KindChange, Name: name, PlaylistID: playlistID})
}

// Changed emits a change event that the UI also receives.
func (r *Reporter) Changed(name string, playlistID int64) {
	r.events.Emit(Event{Kind: KindChange, Name: name, PlaylistID: playlistID, Forward: true})
}

// Logger returns the reporter's logger.
func (r *Reporter) Logger() *zerolog.Logger {
	return &r.log
}
