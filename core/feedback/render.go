package feedback

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md     = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	policy = bluemonday.UGCPolicy()
)

// RenderComment converts a markdown comment to sanitised HTML.
func RenderComment(comment string) string {
	if comment == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(comment), &buf); err != nil {
		return policy.Sanitize(comment)
	}
	return string(policy.SanitizeBytes(buf.Bytes()))
}
