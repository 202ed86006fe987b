package emailsvc

import (
	"bytes"
	"encoding/json"
	"net/mail"
	"testing"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/testutil"
)

func newSendgridService(t *testing.T) (*sendgridService, *testutil.Logger) {
	conf := core.NewTestConfig()
	conf.SendgridApiKey = "SG.key"
	logger := testutil.NewLogger()
	svc, ok := NewSendgridService(conf, logger).(*sendgridService)
	require.True(t, ok)
	return svc, logger
}

func stubSendAPI(t *testing.T, fn func(rest.Request) (*rest.Response, error)) {
	orig := sendAPI
	t.Cleanup(func() { sendAPI = orig })
	sendAPI = fn
}

func TestSendgridService_prepare(t *testing.T) {
	svc, _ := newSendgridService(t)
	m := svc.prepare(core.EmailMessage{
		To:           []mail.Address{{Name: "Ada", Address: "ada@uni.test"}},
		Cc:           []mail.Address{{Address: "ADA@uni.test"}, {Name: "Mia", Address: "mia@vid.test"}},
		Bcc:          []mail.Address{{Address: "mia@vid.test"}, {Address: "ops@vid.test"}},
		Subject:      "Your video is ready for review",
		TemplateName: "feedback_request",
		TextContent:  "review it",
		HTMLContent:  "<p>review it</p>",
		Attachments:  []core.Attachment{{Content: bytes.NewBufferString("Y3N2"), ContentType: "text/csv", Filename: "videos.csv"}},
	})

	assert.Equal(t, &sgmail.Email{Name: "VidTrack", Address: "noreply@localhost"}, m.From)
	assert.Equal(t, []string{"VidTrack", "feedback_request"}, m.Categories)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[VidTrack] Your video is ready for review", p.Subject)
	assert.Equal(t, []*sgmail.Email{{Name: "Ada", Address: "ada@uni.test"}}, p.To)
	assert.Equal(t, []*sgmail.Email{{Name: "Mia", Address: "mia@vid.test"}}, p.CC)
	assert.Equal(t, []*sgmail.Email{{Address: "ops@vid.test"}}, p.BCC)
	assert.Equal(t, []*sgmail.Content{{Type: "text/plain", Value: "review it"}, {Type: "text/html", Value: "<p>review it</p>"}}, m.Content)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, &sgmail.Attachment{Content: "Y3N2", Type: "text/csv", Filename: "videos.csv", Disposition: "attachment"}, m.Attachments[0])

	plain := svc.prepare(core.EmailMessage{To: []mail.Address{{Address: "x@vid.test"}}, TextContent: "hi"})
	assert.Equal(t, []string{"VidTrack", plainCategory}, plain.Categories)
	assert.Len(t, plain.Content, 1)
}

func TestSendgridService_deliver(t *testing.T) {
	svc, _ := newSendgridService(t)
	msg := core.EmailMessage{To: []mail.Address{{Address: "ada@uni.test"}}, Subject: "Hi", TextContent: "hello"}

	var got rest.Request
	stubSendAPI(t, func(req rest.Request) (*rest.Response, error) {
		got = req
		return &rest.Response{StatusCode: 202}, nil
	})
	require.NoError(t, svc.deliver(msg))
	assert.Equal(t, rest.Post, got.Method)
	assert.Equal(t, "Bearer SG.key", got.Headers["Authorization"])
	var body struct {
		Personalizations []struct {
			Subject string `json:"subject"`
		} `json:"personalizations"`
	}
	require.NoError(t, json.Unmarshal(got.Body, &body))
	require.Len(t, body.Personalizations, 1)
	assert.Equal(t, "[VidTrack] Hi", body.Personalizations[0].Subject)

	stubSendAPI(t, func(rest.Request) (*rest.Response, error) {
		return &rest.Response{StatusCode: 400, Body: `{"errors":[]}`}, nil
	})
	assert.EqualError(t, svc.deliver(msg), `sendgrid responded 400: {"errors":[]}`)

	stubSendAPI(t, func(rest.Request) (*rest.Response, error) {
		return nil, errors.New("connection refused")
	})
	assert.EqualError(t, svc.deliver(msg), "calling sendgrid: connection refused")
}

func TestSendgridService_sendMessage(t *testing.T) {
	calls := 0
	stubSendAPI(t, func(rest.Request) (*rest.Response, error) {
		calls++
		return &rest.Response{StatusCode: 500, Body: "oops"}, nil
	})

	svc, logger := newSendgridService(t)
	svc.sendMessage(&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"})
	svc.sendMessage(&core.EmailMessage{To: []mail.Address{{Address: "x@vid.test"}}, Subject: "no content"})
	assert.Zero(t, calls)
	assert.Empty(t, logger.Entries("error"))

	svc.sendMessage(&core.EmailMessage{To: []mail.Address{{Name: "Ada", Address: "ada@uni.test"}}, Subject: "Hi", BodyStr: "hello"})
	assert.Equal(t, 1, calls)
	entries := logger.Entries("error")
	require.Len(t, entries, 1)
	assert.Equal(t, `sending "plain" email to "Ada" <ada@uni.test>: sendgrid responded 500: oops`, entries[0].Message)
}
