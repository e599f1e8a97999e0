package notify

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sing/internal/report"
)

type fakeNotifier struct {
	sent []Notification
	err  error
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	return uint32(len(f.sent)), nil
}


func TestForwarder_MapsKinds(t *testing.T) {
	n := &fakeNotifier{}
	f := NewForwarder(n, zerolog.Nop())

	f.Forward(report.Event{Kind: report.KindAlert, Name: report.EventAlert, Label: "Failed to delete playlist"})
	f.Forward(report.Event{Kind: report.KindNotification, Name: report.EventNotification, Label: "Deleted playlist Mix"})
	f.Forward(report.Event{Kind: report.KindChange, Name: report.EventPlaylistsUpdated, Forward: true})

	require.Len(t, n.sent, 2)
	assert.Equal(t, UrgencyCritical, n.sent[0].Urgency)
	assert.Equal(t, "Failed to delete playlist", n.sent[0].Body)
	assert.Equal(t, UrgencyNormal, n.sent[1].Urgency)
	assert.Equal(t, "Sing", n.sent[1].Title)
}

func TestForwarder_LogsDeliveryFailure(t *testing.T) {
	var buf bytes.Buffer
	f := NewForwarder(&fakeNotifier{err: errors.New("no server")}, zerolog.New(&buf))

	f.Forward(report.Event{Kind: report.KindAlert, Label: "Failed to rename playlist"})

	assert.Contains(t, buf.String(), "no server")
	assert.Contains(t, buf.String(), "desktop notification failed")
}

func TestForwarder_AsBusSink(t *testing.T) {
	n := &fakeNotifier{}
	bus := report.NewBus(NewForwarder(n, zerolog.Nop()))

	bus.Emit(report.Event{Kind: report.KindAlert, Label: "Failed", Forward: true})
	bus.Emit(report.Event{Kind: report.KindAlert, Label: "internal only"})

	require.Len(t, n.sent, 1)
	assert.Equal(t, "Failed", n.sent[0].Body)
}

func TestForwarder_RepeatedLabelReplacesNotification(t *testing.T) {
	n := &fakeNotifier{}
	f := NewForwarder(n, zerolog.Nop())
	alert := report.Event{Kind: report.KindAlert, Label: "Failed to update playlist covers"}

	f.Forward(alert)
	f.Forward(alert)
	f.Forward(report.Event{Kind: report.KindNotification, Label: "Created playlist Mix"})
	f.Forward(alert)
	f.Forward(report.Event{Kind: report.KindAlert, Label: "Failed to load playlist"})

	require.Len(t, n.sent, 5)
	assert.Zero(t, n.sent[0].ReplacesID)
	assert.Equal(t, uint32(1), n.sent[1].ReplacesID)
	assert.Equal(t, "Failed to update playlist covers (2 times)", n.sent[1].Body)
	assert.Zero(t, n.sent[2].ReplacesID, "other kinds are tracked apart")
	assert.Equal(t, uint32(1), n.sent[3].ReplacesID)
	assert.Equal(t, "Failed to update playlist covers (3 times)", n.sent[3].Body)
	assert.Zero(t, n.sent[4].ReplacesID)
	assert.Equal(t, "Failed to load playlist", n.sent[4].Body)
}

func TestForwarder_FailedDeliveryIsNotReplaced(t *testing.T) {
	n := &fakeNotifier{err: errors.New("no server")}
	f := NewForwarder(n, zerolog.Nop())
	alert := report.Event{Kind: report.KindAlert, Label: "Failed to delete playlist"}

	f.Forward(alert)
	n.err = nil
	f.Forward(alert)

	require.Len(t, n.sent, 1)
	assert.Zero(t, n.sent[0].ReplacesID)
	assert.Equal(t, "Failed to delete playlist", n.sent[0].Body)
}
