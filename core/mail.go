package core

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
)

type SendStatus string

const (
	SendStatusSent   SendStatus = "sent"
	SendStatusFailed SendStatus = "failed"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		Body    string

		// AlertID links the message back to the alert that triggered it, if any.
		AlertID string
	}

	// SendResult is the delivery outcome for a single recipient.
	SendResult struct {
		Recipient string     `json:"recipient"`
		Status    SendStatus `json:"status"`
		Reason    string     `json:"reason,omitempty"`
		Timestamp time.Time  `json:"timestamp"`
	}

	// BatchResult aggregates the per-recipient outcomes of one send batch.
	// Uniform is set when the gateway could only report a single aggregate
	// verdict, which was then applied to every recipient.
	BatchResult struct {
		Results []SendResult `json:"results"`
		Uniform bool         `json:"uniform"`
	}

	// MailGateway is any external service that can deliver one transactional
	// email to a single recipient. Implementations must return a *ChannelError
	// for transport-level failures so callers can tell them apart from
	// per-recipient rejections.
	MailGateway interface {
		Send(ctx context.Context, to mail.Address, subject, body string) error
	}

	// BatchMailGateway is implemented by gateways that can only report one
	// aggregate verdict for a whole batch.
	BatchMailGateway interface {
		SendBatch(ctx context.Context, to []mail.Address, subject, body string) error
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Subject != "" || m.Body != "" }

func (r BatchResult) SentCount() int {
	var n int
	for _, res := range r.Results {
		if res.Status == SendStatusSent {
			n++
		}
	}
	return n
}

func (r BatchResult) FailedCount() int {
	return len(r.Results) - r.SentCount()
}

// ChannelError reports a transport-level delivery failure (network unreachable,
// DNS, TLS). It means no per-recipient outcome exists.
type ChannelError struct {
	Reason string
	Err    error
}

func NewChannelError(reason string, err error) error {
	return &ChannelError{Reason: reason, Err: err}
}

func (e *ChannelError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

func IsChannelError(err error) bool {
	_, ok := errors.Cause(err).(*ChannelError)
	return ok
}
