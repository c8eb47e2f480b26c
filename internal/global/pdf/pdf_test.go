package pdf

import (
	"bytes"
	"testing"

	"cohort-checkin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDefaultTemplate(t *testing.T) {
	r, err := New(config.PDF{})
	require.NoError(t, err)

	out, err := r.Render(Letter{
		Name: "Li Lei", StudentID: "2024001",
		StartDate: "2025-01-01", EndDate: "2025-04-03",
		WindowDays: 93, PassDays: 90, IssuedAt: "2025-01-01",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRenderMissingField(t *testing.T) {
	r, err := NewFromTemplate("Title\n\n{{.Nope}}", "")
	require.NoError(t, err)
	_, err = r.Render(Letter{})
	require.Error(t, err)
}

func TestNewBadTemplatePath(t *testing.T) {
	_, err := New(config.PDF{TemplatePath: "/nonexistent/commitment.tmpl"})
	require.Error(t, err)
}
