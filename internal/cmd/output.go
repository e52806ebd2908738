package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/issuehub/internal/api"
)

// textFunc adapts a plain function to ux.TextRenderer
type textFunc func(w io.Writer) error

func (f textFunc) RenderText(w io.Writer, _ bool) error {
	return f(w)
}

// lines renders fixed text
func lines(s ...string) textFunc {
	return func(w io.Writer) error {
		_, err := fmt.Fprintln(w, strings.Join(s, "\n"))
		return err
	}
}

// fields renders aligned "Label: value" pairs
func fields(pairs ...string) textFunc {
	return func(w io.Writer) error {
		width := 0
		for i := 0; i < len(pairs); i += 2 {
			if len(pairs[i]) > width {
				width = len(pairs[i])
			}
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			if _, err := fmt.Fprintf(w, "%-*s  %s\n", width+1, pairs[i]+":", pairs[i+1]); err != nil {
				return err
			}
		}
		return nil
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func userRef(id *int64) string {
	if id == nil {
		return "unassigned"
	}
	return "user " + formatID(*id)
}

// pageFooter is the "Showing x to y of z" line of a paginated issue list
func pageFooter(l *api.IssueList) string {
	from, to := l.Range()
	if l.Total == 0 {
		return ""
	}
	footer := fmt.Sprintf("Showing %d to %d of %d", from, to, l.Total)
	if pages := l.Pages(); pages > 1 {
		footer += fmt.Sprintf(" (page %d of %d)", l.Page().Number(), pages)
	}
	return footer
}

// truncate shortens s to n runes for table cells
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
