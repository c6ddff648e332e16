package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentsBoldCodeAndMediaCard(t *testing.T) {
	frags := Fragments("**Hot!** Try our `spicy` wings\nhttp://x/img.png")
	require.Len(t, frags, 2)

	text, ok := frags[0].(TextFragment)
	require.True(t, ok, "first fragment should be text")
	assert.Equal(t, "<strong>Hot!</strong> Try our <code>spicy</code> wings", text.HTML)

	media, ok := frags[1].(MediaFragment)
	require.True(t, ok, "second fragment should be a media card")
	assert.Equal(t, "http://x/img.png", media.URL)
	assert.Empty(t, media.Caption)
}

func TestFragmentsCaptionExtraction(t *testing.T) {
	frags := Fragments("photo: Our bestseller - https://cdn.example.com/menu/photo/abc123")
	require.Len(t, frags, 1)

	media, ok := frags[0].(MediaFragment)
	require.True(t, ok)
	assert.Equal(t, "Our bestseller", media.Caption)
	assert.Equal(t, "https://cdn.example.com/menu/photo/abc123", media.URL)
}

func TestFormattingOrderProtectsCodeSpans(t *testing.T) {
	frags := Fragments("see `**raw**` and *slanted*")
	require.Len(t, frags, 1)

	text := frags[0].(TextFragment)
	assert.Equal(t, "see <code>**raw**</code> and <em>slanted</em>", text.HTML)
}

func TestUnmatchedDelimitersStayLiteral(t *testing.T) {
	frags := Fragments("a **dangling bold and a `dangling code")
	require.Len(t, frags, 1)

	text := frags[0].(TextFragment)
	assert.Equal(t, "a **dangling bold and a `dangling code", text.HTML)
}

func TestEscapesMarkupSignificantCharacters(t *testing.T) {
	frags := Fragments("<script>alert(1)</script> & friends")
	require.Len(t, frags, 1)

	text := frags[0].(TextFragment)
	assert.NotContains(t, text.HTML, "<script>")
	assert.Contains(t, text.HTML, "&lt;script&gt;")
	assert.Contains(t, text.HTML, "&amp;")
}

func TestWhitespaceOnlyMessageFallsBack(t *testing.T) {
	frags := Fragments("\n\n  \n")
	require.Len(t, frags, 1)
	_, ok := frags[0].(TextFragment)
	assert.True(t, ok, "fallback must be a single text fragment")
}

func TestLogAppendsChronologicallyAndStaysScrolled(t *testing.T) {
	l := NewLog()
	l.Render("hi", SpeakerUser)
	l.Render("hello! welcome to **Casa Verde**", SpeakerBot)

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, SpeakerUser, entries[0].Speaker)
	assert.Equal(t, SpeakerBot, entries[1].Speaker)
	assert.Equal(t, "hi", entries[0].RawText)
	assert.True(t, l.AtEnd(), "log must stay scrolled to the end after append")

	l.Clear()
	assert.Zero(t, l.Len())
	assert.True(t, l.AtEnd())
}
