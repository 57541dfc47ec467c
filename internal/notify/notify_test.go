package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type chanSender struct {
	events chan Event
	err    error
}

func (s *chanSender) Send(event Event) error {
	s.events <- event
	return s.err
}

func TestDispatchDeliversAsynchronously(t *testing.T) {
	sender := &chanSender{events: make(chan Event, 1)}
	n := NewNotifier(sender, zap.NewNop())

	n.Dispatch(Event{Type: EventPolicyApproved, SubjectID: 7, Message: "approved"})

	select {
	case got := <-sender.events:
		assert.Equal(t, EventPolicyApproved, got.Type)
		assert.Equal(t, int64(7), got.SubjectID)
	case <-time.After(time.Second):
		t.Fatal("event was not dispatched")
	}
}

func TestDispatchSwallowsSenderErrors(t *testing.T) {
	sender := &chanSender{events: make(chan Event, 1), err: errors.New("smtp down")}
	n := NewNotifier(sender, zap.NewNop())

	// Must not panic or propagate; delivery is best-effort.
	n.Dispatch(Event{Type: EventWithdrawalProcessed, SubjectID: 1})

	select {
	case <-sender.events:
	case <-time.After(time.Second):
		t.Fatal("event was not dispatched")
	}
}
