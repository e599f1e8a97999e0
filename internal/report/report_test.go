package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sing/internal/errmsg"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Forward(e Event) { s.events = append(s.events, e) }

func newTestReporter(t *testing.T, opts Options) (*Reporter, *recordingSink, *Bus, *bytes.Buffer, *Metrics) {
	t.Helper()
	sink := &recordingSink{}
	bus := NewBus(sink)
	var buf bytes.Buffer
	metrics := NewMetrics(prometheus.NewRegistry())
	return New(zerolog.New(&buf), bus, metrics, opts), sink, bus, &buf, metrics
}

func TestFailure_LogsCauseAndAlertsWithLabel(t *testing.T) {
	r, sink, _, buf, metrics := newTestReporter(t, Options{})
	cause := errors.New("UNIQUE constraint failed: playlist_items.position")

	r.Failure(errmsg.OpPlaylistInsert, errmsg.Persistence(errmsg.OpPlaylistInsert, cause))

	require.Len(t, sink.events, 1)
	alert := sink.events[0]
	assert.Equal(t, KindAlert, alert.Kind)
	assert.Equal(t, "Failed to insert tracks into playlist", alert.Label)
	assert.NotContains(t, alert.Label, "UNIQUE", "cause must not reach the user")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "persistence", line["kind"])
	assert.Contains(t, line["error"], "UNIQUE constraint failed")

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Operations.WithLabelValues(string(errmsg.OpPlaylistInsert), "failure", "persistence")), 0)
}

func TestSuccess_NotificationOnlyWhenEnabled(t *testing.T) {
	r, sink, _, _, metrics := newTestReporter(t, Options{})
	r.Success(errmsg.OpPlaylistCreate, "Created playlist Mix")
	assert.Empty(t, sink.events)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Operations.WithLabelValues(string(errmsg.OpPlaylistCreate), "success", "")), 0)

	r, sink, _, _, _ = newTestReporter(t, Options{NotifySuccess: true})
	r.Success(errmsg.OpPlaylistCreate, "Created playlist Mix")
	r.Success(errmsg.OpPlaylistRename, "")
	require.Len(t, sink.events, 1)
	assert.Equal(t, KindNotification, sink.events[0].Kind)
	assert.Equal(t, "Created playlist Mix", sink.events[0].Label)
}

func TestReport(t *testing.T) {
	r, sink, _, _, _ := newTestReporter(t, Options{NotifySuccess: true})
	failure := errors.New("boom")

	assert.Equal(t, failure, r.Report(errmsg.OpPlaylistDelete, failure, "Deleted"))
	assert.NoError(t, r.Report(errmsg.OpPlaylistDelete, nil, "Deleted"))

	require.Len(t, sink.events, 2)
	assert.Equal(t, KindAlert, sink.events[0].Kind)
	assert.Equal(t, KindNotification, sink.events[1].Kind)
}

func TestInternal_NotForwarded(t *testing.T) {
	r, sink, bus, _, _ := newTestReporter(t, Options{})

	var got []Event
	bus.On(EventPlaylistChanged, func(e Event) { got = append(got, e) })

	r.Internal(EventPlaylistChanged, 7)

	assert.Empty(t, sink.events, "internal events stay in the backend")
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].PlaylistID)
	assert.False(t, got[0].Forward)
}

func TestChanged_ForwardedAndDispatched(t *testing.T) {
	r, sink, bus, _, _ := newTestReporter(t, Options{})

	handled := 0
	bus.On(EventPlaylistUpdated, func(Event) { handled++ })

	r.Changed(EventPlaylistUpdated, 3)

	require.Len(t, sink.events, 1)
	assert.Equal(t, EventPlaylistUpdated, sink.events[0].Name)
	assert.Equal(t, 1, handled)
}

func TestBus_HandlersByName(t *testing.T) {
	bus := NewBus(nil)
	var order []string
	bus.On("a", func(Event) { order = append(order, "a1") })
	bus.On("a", func(Event) { order = append(order, "a2") })
	bus.On("b", func(Event) { order = append(order, "b") })

	bus.Emit(Event{Name: "a", Forward: true})

	assert.Equal(t, []string{"a1", "a2"}, order)
}

func TestSinks_FanOut(t *testing.T) {
	first, second := &recordingSink{}, &recordingSink{}
	var viaFunc int

	Sinks{first, second, SinkFunc(func(Event) { viaFunc++ })}.Forward(Event{Name: "x"})

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
	assert.Equal(t, 1, viaFunc)
}
