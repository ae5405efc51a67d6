package notification

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/academicflow/backend/core"
)

// State tracks one alert-to-email flow.
type State string

const (
	StateDraft          State = "draft"
	StateSending        State = "sending"
	StateCompleted      State = "completed"
	StateChannelFailure State = "channel_failure"
)

var errNoRecipients = errors.New("message has no recipients")

type (
	// Dispatcher sends one message to a batch of recipients through the mail
	// gateway. No retries; a failed batch is the caller's to re-invoke.
	Dispatcher struct {
		gw     core.MailGateway
		logger core.Logger
	}

	// Dispatch is the record of one send flow.
	Dispatch struct {
		Message       *core.EmailMessage `json:"message"`
		State         State              `json:"state"`
		Result        core.BatchResult   `json:"result"`
		FailureReason string             `json:"failure_reason,omitempty"`
	}

	outcome struct {
		result     core.SendResult
		channelErr error
	}
)

func NewDispatcher(gw core.MailGateway, logger core.Logger) *Dispatcher {
	return &Dispatcher{gw: gw, logger: logger}
}

// Send fans out one gateway call per recipient and waits for all of them to
// settle before returning. A recipient's failure never blocks another's call;
// failures come back as data in the result list. The returned error is non-nil
// only when every call failed at the transport level (channel down), in which
// case no per-recipient results exist. Once dispatched, a batch cannot be
// cancelled.
func (d *Dispatcher) Send(ctx context.Context, msg *core.EmailMessage) (*Dispatch, error) {
	disp := &Dispatch{Message: msg, State: StateDraft}
	if !msg.HasRecipients() {
		return disp, errNoRecipients
	}
	disp.State = StateSending
	sendBatches.Inc()

	// a gateway that only knows an aggregate verdict applies it uniformly;
	// per-recipient outcomes are never guessed
	if bgw, ok := d.gw.(core.BatchMailGateway); ok {
		return d.sendAggregate(ctx, bgw, disp)
	}

	outcomes := make([]outcome, len(msg.To))
	var wg sync.WaitGroup
	for i, to := range msg.To {
		wg.Add(1)
		go func(i int, to mail.Address) { // fan-out, joined below
			defer wg.Done()
			outcomes[i] = d.sendOne(ctx, to, msg.Subject, msg.Body)
		}(i, to)
	}
	wg.Wait()

	if reason, down := channelDown(outcomes); down {
		disp.State = StateChannelFailure
		disp.FailureReason = reason
		channelFailures.Inc()
		return disp, core.NewChannelError(reason, nil)
	}

	results := make([]core.SendResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, o.result)
	}
	disp.State = StateCompleted
	disp.Result = core.BatchResult{Results: results}
	d.observe(disp.Result)
	return disp, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, to mail.Address, subject, body string) outcome {
	res := core.SendResult{Recipient: to.Address, Status: core.SendStatusSent, Timestamp: time.Now().UTC()}
	err := d.gw.Send(ctx, to, subject, body)
	if err != nil {
		res.Status = core.SendStatusFailed
		res.Reason = err.Error()
		d.logger.Warn(fmt.Sprintf("sending to %s: %v", to.Address, err))
	}
	o := outcome{result: res}
	if core.IsChannelError(err) {
		o.channelErr = err
	}
	return o
}

func (d *Dispatcher) sendAggregate(ctx context.Context, gw core.BatchMailGateway, disp *Dispatch) (*Dispatch, error) {
	msg := disp.Message
	err := gw.SendBatch(ctx, msg.To, msg.Subject, msg.Body)
	if core.IsChannelError(err) {
		disp.State = StateChannelFailure
		disp.FailureReason = err.Error()
		channelFailures.Inc()
		return disp, err
	}

	now := time.Now().UTC()
	status, reason := core.SendStatusSent, ""
	if err != nil {
		status, reason = core.SendStatusFailed, err.Error()
	}
	results := make([]core.SendResult, 0, len(msg.To))
	for _, to := range msg.To {
		results = append(results, core.SendResult{
			Recipient: to.Address,
			Status:    status,
			Reason:    reason,
			Timestamp: now,
		})
	}

	disp.State = StateCompleted
	disp.Result = core.BatchResult{Results: results, Uniform: true}
	d.observe(disp.Result)
	return disp, nil
}

func (d *Dispatcher) observe(res core.BatchResult) {
	emailsSent.Add(float64(res.SentCount()))
	emailsFailed.Add(float64(res.FailedCount()))
}

// channelDown reports a transport-level failure: every recipient's call must
// have failed with a channel error. Uniform rejections by the gateway stay
// per-recipient data.
func channelDown(outcomes []outcome) (string, bool) {
	if len(outcomes) == 0 {
		return "", false
	}
	for _, o := range outcomes {
		if o.channelErr == nil {
			return "", false
		}
	}
	return outcomes[0].channelErr.Error(), true
}
