package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetTemplate(t *testing.T) {
	tmpl, err := PasswordResetTemplate()
	require.NoError(t, err)

	html, text, err := tmpl.Render(PasswordResetContext{
		Company:  " Acme ",
		UserName: "Alice",
		ResetURL: "https://app.example.com/auth/reset/abc",
	})
	require.NoError(t, err)
	assert.Contains(t, html, `href="https://app.example.com/auth/reset/abc"`)
	assert.Contains(t, text, "Hello Alice,")
	assert.Contains(t, text, "Acme password reset")
	assert.Contains(t, text, "after 1 hour or")

	_, text, err = tmpl.Render(PasswordResetContext{Company: "Acme", ResetURL: "https://x.test/r", ExpiryHours: 3})
	require.NoError(t, err)
	assert.Contains(t, text, "Hello,")
	assert.Contains(t, text, "after 3 hours or")
}

func TestPasswordResetTemplateEscapesName(t *testing.T) {
	tmpl, err := PasswordResetTemplate()
	require.NoError(t, err)

	html, _, err := tmpl.Render(PasswordResetContext{
		Company:  "Acme",
		UserName: "<script>x</script>",
		ResetURL: "https://app.example.com/r",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestPasswordResetTemplateRejectsBadContext(t *testing.T) {
	tmpl, err := PasswordResetTemplate()
	require.NoError(t, err)

	tests := []struct {
		name string
		ctx  PasswordResetContext
		want error
	}{
		{"missing company", PasswordResetContext{ResetURL: "https://a.test/r"}, ErrCompanyRequired},
		{"missing url", PasswordResetContext{Company: "Acme"}, ErrResetURLRequired},
		{"relative url", PasswordResetContext{Company: "Acme", ResetURL: "/auth/reset/abc"}, ErrResetURLAbsolute},
		{"javascript url", PasswordResetContext{Company: "Acme", ResetURL: "javascript:alert(1)"}, ErrResetURLScheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tmpl.Render(tt.ctx)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
