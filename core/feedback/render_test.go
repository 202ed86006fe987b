package feedback

import (
	"strings"
	"testing"
)

func TestRenderComment(t *testing.T) {
	tests := []struct {
		name     string
		comment  string
		contains []string
		excludes []string
	}{
		{name: "empty"},
		{name: "emphasis", comment: "Great **pacing**", contains: []string{"<p>Great <strong>pacing</strong></p>"}},
		{name: "list", comment: "- audio\n- captions", contains: []string{"<li>audio</li>", "<li>captions</li>"}},
		{name: "script stripped", comment: "ok <script>alert(1)</script>", excludes: []string{"<script", "</script>"}},
		{name: "unsafe link", comment: "[x](javascript:alert(1))", excludes: []string{"javascript:"}},
		{name: "autolink", comment: "see https://example.com", contains: []string{`href="https://example.com"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderComment(tt.comment)
			if tt.comment == "" && got != "" {
				t.Errorf("RenderComment() = %q, want empty", got)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("RenderComment() = %q, missing %q", got, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("RenderComment() = %q, should not contain %q", got, s)
				}
			}
		})
	}
}
