// Package render turns plain-text chat messages into structured UI fragments
// and keeps the append-only conversation log. Formatting is best-effort:
// malformed or unmatched delimiters stay literal, never an error.
package render

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"time"
)

type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Fragment is one renderable piece of a message: either formatted text or a
// media card.
type Fragment interface {
	fragment()
}

// TextFragment carries escaped, inline-formatted markup.
type TextFragment struct {
	HTML string
}

// MediaFragment is an embedded photo card with an optional caption.
type MediaFragment struct {
	Caption string
	URL     string
}

func (TextFragment) fragment()  {}
func (MediaFragment) fragment() {}

// Entry is one conversation log line. Entries are append-only and never
// mutated after creation.
type Entry struct {
	Speaker   Speaker
	RawText   string
	Fragments []Fragment
	At        time.Time
}

var (
	imageURLRe = regexp.MustCompile(`(?i)https?://\S+?\.(?:png|jpe?g|gif|webp)(?:\?\S*)?|https?://\S*/photo/\S+`)
	codeRe     = regexp.MustCompile("`([^`]+)`")
	boldRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe   = regexp.MustCompile(`\*([^*]+)\*`)
	photoLabel = regexp.MustCompile(`(?i)^photo\s*:\s*`)
)

// Fragments splits a message into renderable fragments. Each non-empty line
// either becomes a media card (first image URL on the line wins; the rest of
// the line is its caption) or a formatted text fragment. A message yielding
// no fragments at all falls back to one text fragment for the whole input.
func Fragments(text string) []Fragment {
	var out []Fragment
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if loc := imageURLRe.FindStringIndex(line); loc != nil {
			url := line[loc[0]:loc[1]]
			caption := cleanCaption(line[:loc[0]] + line[loc[1]:])
			out = append(out, MediaFragment{Caption: caption, URL: url})
			continue
		}
		out = append(out, TextFragment{HTML: formatInline(line)})
	}
	if len(out) == 0 {
		return []Fragment{TextFragment{HTML: formatInline(text)}}
	}
	return out
}

func cleanCaption(s string) string {
	s = strings.TrimSpace(s)
	s = photoLabel.ReplaceAllString(s, "")
	s = strings.TrimRight(s, " \t:-–")
	return s
}

// formatInline escapes markup-significant characters, then applies code,
// bold, and italics in that fixed order. Code spans are lifted out before the
// emphasis passes so asterisks inside them stay literal.
func formatInline(s string) string {
	s = html.EscapeString(s)

	var spans []string
	s = codeRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := m[1 : len(m)-1]
		spans = append(spans, "<code>"+inner+"</code>")
		return codePlaceholder(len(spans) - 1)
	})

	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")

	for i, span := range spans {
		s = strings.Replace(s, codePlaceholder(i), span, 1)
	}
	return s
}

func codePlaceholder(i int) string {
	return "\x00" + string(rune('A'+i)) + "\x00"
}

// Log is the scrolling message log. Appends keep the scroll cursor pinned to
// the end. Entries are appended strictly in the order renders are invoked.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	scroll  int
	now     func() time.Time
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

// Render converts text into fragments and appends the entry, returning it.
func (l *Log) Render(text string, speaker Speaker) Entry {
	e := Entry{
		Speaker:   speaker,
		RawText:   text,
		Fragments: Fragments(text),
		At:        l.now(),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	l.scroll = len(l.entries)
	return e
}

// Entries returns a snapshot of the log in chronological order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len reports the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// AtEnd reports whether the scroll cursor sits at the newest entry.
func (l *Log) AtEnd() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scroll == len(l.entries)
}

// Clear drops all entries, e.g. when a fresh activation rebuilds the surface.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.scroll = 0
}
