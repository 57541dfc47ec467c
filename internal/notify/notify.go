package notify

import (
	"go.uber.org/zap"
)

const (
	EventPolicyApproved      = "policy_approved"
	EventPolicyRejected      = "policy_rejected"
	EventCommissionCredited  = "commission_credited"
	EventWithdrawalRequested = "withdrawal_requested"
	EventWithdrawalProcessed = "withdrawal_processed"
)

// Event is a best-effort notification to the subject of an operation.
// Delivery is not guaranteed and is never retried.
type Event struct {
	Type      string
	SubjectID int64
	Message   string
}

// Sender delivers an event to the external notification collaborator.
type Sender interface {
	Send(event Event) error
}

type Notifier struct {
	sender Sender
	logger *zap.Logger
}

func NewNotifier(sender Sender, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger}
}

// Dispatch sends the event asynchronously. Errors are logged and swallowed;
// a failed notification must never fail the operation that emitted it.
func (n *Notifier) Dispatch(event Event) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("notification dispatch panicked",
					zap.String("type", event.Type),
					zap.Any("panic", r))
			}
		}()

		if err := n.sender.Send(event); err != nil {
			n.logger.Warn("notification delivery failed",
				zap.String("type", event.Type),
				zap.Int64("subject_id", event.SubjectID),
				zap.Error(err))
			return
		}
		n.logger.Info("notification dispatched",
			zap.String("type", event.Type),
			zap.Int64("subject_id", event.SubjectID))
	}()
}

// LogSender is the default sender used when no external channel is wired.
type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) Send(event Event) error {
	s.Logger.Info("notification (log only)",
		zap.String("type", event.Type),
		zap.Int64("subject_id", event.SubjectID),
		zap.String("message", event.Message))
	return nil
}
