package notify

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/sing/internal/report"
)

const (
	alertTimeout        = 8000
	notificationTimeout = 4000
)

// shown is the last notification sent for one kind of event.
type shown struct {
	id    uint32
	label string
	count int
}

// Forwarder shows the user-facing events of the backend as desktop
// notifications. Alerts are critical, notifications normal; change events
// carry no text and are ignored. An event repeating the label of the last
// one of its kind replaces that notification and shows a repeat count.
type Forwarder struct {
	notifier Notifier
	log      zerolog.Logger

	mu   sync.Mutex
	last map[report.Kind]shown
}

var _ report.Sink = (*Forwarder)(nil)

func NewForwarder(n Notifier, log zerolog.Logger) *Forwarder {
	return &Forwarder{notifier: n, log: log, last: make(map[report.Kind]shown)}
}

// Forward sends e if it is an alert or a notification. Delivery failures
// are logged and otherwise ignored.
func (f *Forwarder) Forward(e report.Event) {
	n, ok := toNotification(e)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.last[e.Kind]
	count := 1
	if prev.id != 0 && prev.label == e.Label {
		count = prev.count + 1
		n.ReplacesID = prev.id
		n.Body = fmt.Sprintf("%s (%d times)", e.Label, count)
	}

	id, err := f.notifier.Notify(n)
	if err != nil {
		f.log.Warn().Err(err).Str("label", e.Label).Msg("desktop notification failed")
		return
	}
	f.last[e.Kind] = shown{id: id, label: e.Label, count: count}
}

func toNotification(e report.Event) (Notification, bool) {
	if e.Label == "" {
		return Notification{}, false
	}
	switch e.Kind {
	case report.KindAlert:
		return Notification{
			Title:   appName,
			Body:    e.Label,
			Icon:    "dialog-error",
			Timeout: alertTimeout,
			Urgency: UrgencyCritical,
		}, true
	case report.KindNotification:
		return Notification{
			Title:   appName,
			Body:    e.Label,
			Timeout: notificationTimeout,
			Urgency: UrgencyNormal,
		}, true
	default:
		return Notification{}, false
	}
}
