// Package render derives the human-readable display fields attached to
// message and notification views.
package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<]+`)

// TimeAgo renders a Spanish relative-time string for t against now.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "ahora"
	case d < time.Hour:
		n := int(d.Minutes())
		if n == 1 {
			return "hace 1 minuto"
		}
		return fmt.Sprintf("hace %d minutos", n)
	case d < 24*time.Hour:
		n := int(d.Hours())
		if n == 1 {
			return "hace 1 hora"
		}
		return fmt.Sprintf("hace %d horas", n)
	default:
		n := int(d.Hours() / 24)
		if n == 1 {
			return "hace 1 día"
		}
		return fmt.Sprintf("hace %d días", n)
	}
}

// FormatContent escapes the content, auto-links URLs and converts newlines to
// <br> tags. System and application-update messages skip formatting.
func FormatContent(content string) string {
	escaped := html.EscapeString(content)
	linked := urlPattern.ReplaceAllStringFunc(escaped, func(u string) string {
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">%s</a>`, u, u)
	})
	return strings.ReplaceAll(linked, "\n", "<br>")
}
