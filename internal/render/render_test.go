package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "ahora"},
		{"one minute", now.Add(-90 * time.Second), "hace 1 minuto"},
		{"minutes", now.Add(-5 * time.Minute), "hace 5 minutos"},
		{"one hour", now.Add(-65 * time.Minute), "hace 1 hora"},
		{"hours", now.Add(-3 * time.Hour), "hace 3 horas"},
		{"one day", now.Add(-25 * time.Hour), "hace 1 día"},
		{"days", now.Add(-72 * time.Hour), "hace 3 días"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeAgo(tc.t, now))
		})
	}
}

func TestFormatContentLinksURLs(t *testing.T) {
	got := FormatContent("mira https://example.org/op ahora")
	assert.Contains(t, got, `<a href="https://example.org/op" target="_blank" rel="noopener">https://example.org/op</a>`)
}

func TestFormatContentNewlines(t *testing.T) {
	assert.Equal(t, "hola<br>chau", FormatContent("hola\nchau"))
}

func TestFormatContentEscapesHTML(t *testing.T) {
	got := FormatContent("<script>alert(1)</script>")
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
}
