package emailsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/academicflow/backend/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// sendgridGateway delivers one message per recipient through the SendGrid API,
// so delivery outcomes stay isolated per recipient.
type sendgridGateway struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	logger     core.Logger
}

var _ core.MailGateway = (*sendgridGateway)(nil)

func NewSendgridGateway(conf *core.Config, logger core.Logger) *sendgridGateway {
	return &sendgridGateway{
		key:        conf.SendgridApiKey,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     logger,
	}
}

func (gw sendgridGateway) Send(ctx context.Context, to mail.Address, subject, body string) error {
	req := sendgrid.GetRequest(gw.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(gw.prepare(to, subject, body))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		// transport-level: the API could not be reached at all
		gw.logger.Error(fmt.Sprintf("sending email: %v", err), err)
		return core.NewChannelError("sendgrid unreachable", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		gw.logger.Error(fmt.Sprintf("sending email - status: %d - Body: %s", res.StatusCode, res.Body))
		return fmt.Errorf("sendgrid: status %d - Body: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (gw sendgridGateway) prepare(to mail.Address, subject, body string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = gw.subjPrefix + subject
	p.AddTos(sgmail.NewEmail(to.Name, to.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(gw.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))
	return m
}
