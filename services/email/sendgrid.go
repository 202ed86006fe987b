package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/vidtrack/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
	plainCategory    = "plain"
)

var sendAPI = sendgrid.API // mockable

type sendgridService struct {
	apiKey     string
	from       *sgmail.Email
	subjPrefix string
	appName    string
	logger     core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	return &sendgridService{
		apiKey:     conf.SendgridApiKey,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		appName:    conf.AppName,
		logger:     logger,
	}
}

func (svc sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc sendgridService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering email: %v", err), errors.Wrap(err, "rendering email"))
		return
	}
	if !msg.HasRecipients() || !(msg.HasContent() || msg.HasAttachments()) {
		return
	}
	if err := svc.deliver(*msg); err != nil {
		svc.logger.Error(
			fmt.Sprintf("sending %q email to %s: %v", category(*msg), joinAddresses(msg.To), err),
			err,
		)
	}
}

// deliver posts msg to the SendGrid mail API.
func (svc sendgridService) deliver(msg core.EmailMessage) error {
	req := sendgrid.GetRequest(svc.apiKey, sendgridEndpoint, sendgridHost)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))

	res, err := sendAPI(req)
	if err != nil {
		return errors.Wrap(err, "calling sendgrid")
	}
	if res.StatusCode >= 400 {
		return errors.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// prepare builds a single personalization for msg.
// SendGrid rejects an address repeated across to, cc and bcc, so only its first occurrence is kept.
func (svc sendgridService) prepare(msg core.EmailMessage) *sgmail.SGMailV3 {
	seen := make(map[string]bool)
	recipients := func(addrs []mail.Address) []*sgmail.Email {
		var list []*sgmail.Email
		for _, a := range addrs {
			key := strings.ToLower(a.Address)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			list = append(list, sgmail.NewEmail(a.Name, a.Address))
		}
		return list
	}

	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject
	p.AddTos(recipients(msg.To)...)
	p.AddCCs(recipients(msg.Cc)...)
	p.AddBCCs(recipients(msg.Bcc)...)

	m := sgmail.NewV3Mail().
		SetFrom(svc.from).
		AddPersonalizations(p).
		AddCategories(svc.appName, category(msg))

	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	for _, at := range msg.Attachments {
		m.AddAttachment(sgmail.NewAttachment().
			SetContent(at.Content.String()).
			SetType(at.ContentType).
			SetFilename(at.Filename).
			SetDisposition("attachment"))
	}
	return m
}

// category tags a message with its template so deliveries can be told apart in SendGrid's stats.
func category(msg core.EmailMessage) string {
	if msg.TemplateName == "" {
		return plainCategory
	}
	return msg.TemplateName
}
