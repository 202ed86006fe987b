package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core"
	appfs "github.com/trezcool/vidtrack/fs"
	"github.com/trezcool/vidtrack/testutil"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	require.NoError(t, core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf.FrontendBaseURL, true))
	ResetSentMessages()

	svc := NewConsoleServiceMock(conf, testutil.NewLogger())
	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Ada", Address: "ada@test.cd"}},
			Subject:      "Your video is ready for review",
			TemplateName: "feedback_request",
			TemplateData: map[string]interface{}{
				"LecturerName":  "Ada",
				"VideoTitle":    "Intro",
				"ProjectTitle":  "Algorithms",
				"UID":           "dWlk",
				"Token":         "TS-sig",
				"ExpiresInDays": 14,
			},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@test.cd"}}, Subject: "no content"},
	)

	sent := LastSentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.True(t, strings.Contains(msg.TextContent, "http://localhost:3000/feedback/dWlk/TS-sig"), msg.TextContent)
	assert.True(t, strings.Contains(msg.HTMLContent, `href="http://localhost:3000/feedback/dWlk/TS-sig"`), msg.HTMLContent)
	assert.True(t, strings.Contains(msg.TextContent, "expires in 14 days"), msg.TextContent)

	ResetSentMessages()
	assert.Empty(t, LastSentMessages())
}
