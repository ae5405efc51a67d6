package emailsvc

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/academicflow/backend/core"
)

// SentMail records one delivery made through the console gateway; test helpers
// inspect it.
type SentMail struct {
	To      mail.Address
	Subject string
	Body    string
}

var (
	SentMails = make([]SentMail, 0)
	mu        sync.Mutex
)

// consoleGateway writes messages to the log instead of delivering them.
type consoleGateway struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.MailGateway = (*consoleGateway)(nil)

func NewConsoleGateway(conf *core.Config) core.MailGateway {
	return &consoleGateway{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

// NewConsoleGatewayMock returns a gateway for tests: silent, but recording
// every delivery in SentMails.
func NewConsoleGatewayMock(conf *core.Config) core.MailGateway {
	return &consoleGateway{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    true,
	}
}

// ResetSentMails clears the recorded deliveries between tests.
func ResetSentMails() {
	mu.Lock()
	SentMails = SentMails[:0]
	mu.Unlock()
}

func (gw consoleGateway) Send(_ context.Context, to mail.Address, subject, body string) error {
	if !gw.disableOutput {
		out := new(strings.Builder)
		_, _ = fmt.Fprintf(out, "From: %s\r\n", gw.defaultFromEmail.String())
		_, _ = fmt.Fprintf(out, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
		_, _ = fmt.Fprintf(out, "Subject: %s\r\n", gw.subjPrefix+subject)
		_, _ = fmt.Fprintf(out, "To: %s\r\n", to.String())
		_, _ = fmt.Fprintf(out, "\r\n%s\r\n", body)
		log.Println(out.String())
	}

	mu.Lock()
	SentMails = append(SentMails, SentMail{To: to, Subject: subject, Body: body})
	mu.Unlock()
	return nil
}
