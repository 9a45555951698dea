package reporters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	barWidth        = 20
	textPreviewRune = 72
)

// TextRenderer draws a plain table of the scalars and recent messages.
type TextRenderer struct {
	W io.Writer
}

var _ Renderer = TextRenderer{}

func (TextRenderer) Name() string {
	return "text"
}

func (t TextRenderer) Render(_ context.Context, report Report) error {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "== status %s ==\n", report.Time.Format("15:04:05"))
	for field, value := range report.State.All() {
		filled := int(value*barWidth + 0.5)
		fmt.Fprintf(buf, "%-11s %.2f %s%s\n",
			field,
			value,
			strings.Repeat("#", filled),
			strings.Repeat(".", barWidth-filled),
		)
	}
	if len(report.Recent) == 0 {
		buf.WriteString("(no messages)\n")
	}
	for _, msg := range report.Recent {
		fmt.Fprintf(buf, "%s [%s] %s\n",
			msg.Time.Format("15:04:05"),
			msg.Peer,
			preview(msg.Text, textPreviewRune),
		)
	}
	_, err := t.W.Write(buf.Bytes())
	return err
}

func preview(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit-3 {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
