package normalize

import (
	"slices"
	"testing"
)

// Test table covers each stage and combined pipelines.
func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "hello world",
			out:  "hello world",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'f', 'o', 'o', 0x80, ' ', 'b', 'a', 'r'}),
			out:  "foo bar",
		},
		{
			name: "controls dropped, whitespace kept",
			in:   "win\x00ner\x7f\u0090\tnow\r\nfree",
			out:  "winner now free",
		},
		{
			name: "case fold",
			in:   "FrEE OFFER",
			out:  "free offer",
		},
		{
			name: "remove zero-widths",
			in:   "f\u200Br\u200Dee", // ZERO WIDTH SPACE + ZERO WIDTH JOINER
			out:  "free",
		},
		{
			name: "remove combining marks",
			in:   "cafe\u0301 caf\u00e9", // combining acute and precomposed
			out:  "cafe cafe",
		},
		{
			name: "width fold fullwidth",
			in:   "ＷＩＮ now", // fullwidth letters
			out:  "win now",
		},
		{
			name: "nfkc ligature",
			in:   "o\uFB03ce", // ﬃ ligature
			out:  "office",
		},
		{
			name: "collapse whitespace",
			in:   "a\t\tb\nc   d",
			out:  "a b c d",
		},
		{
			name: "combined normalization",
			in:   "  ZW\u200B N\u200C B\uFEFF S  \t\n",
			out:  "zw nb s",
		},
		{
			name: "idempotent",
			in:   n.Normalize("Ｃlaim\t\tPRIZE\u200D  "),
			out:  "claim prize",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.out)
			}
			// Idempotence check: normalize again should be identical
			got2 := n.Normalize(got)
			if got2 != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, got2)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	n := New()

	got := n.Tokens("WIN a FREE iPhone!!! Reply to claim your prize_now, 100% off.", nil)
	want := []string{"win", "free", "iphone", "reply", "to", "claim", "your", "prize_now", "100", "off"}
	if !slices.Equal(got, want) {
		t.Fatalf("Tokens = %q, want %q", got, want)
	}

	got = n.Tokens("WIN a FREE iPhone!!! Reply to claim your prize now", EnglishStopWords())
	want = []string{"win", "free", "iphone", "reply", "claim", "prize"}
	if !slices.Equal(got, want) {
		t.Fatalf("Tokens with stop words = %q, want %q", got, want)
	}

	if toks := n.Tokens("  ", nil); len(toks) != 0 {
		t.Fatalf("blank text gave %q", toks)
	}
}

func TestCollapseSpaces(t *testing.T) {
	in := " \t a \n b   c \r\n "
	want := "a b c"
	got := collapseSpaces(in)
	if got != want {
		t.Fatalf("collapseSpaces(%q) = %q, want %q", in, got, want)
	}
}

func TestEnglishStopWords(t *testing.T) {
	s := EnglishStopWords()
	for _, w := range []string{"the", "and", "your"} {
		if _, ok := s[w]; !ok {
			t.Fatalf("stop set missing %q", w)
		}
	}
	if _, ok := s["prize"]; ok {
		t.Fatalf("stop set contains content word")
	}
}
