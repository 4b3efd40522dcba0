package render

import (
	"slices"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func plain(lines []Line) []string {
	return LinesToPlainStrings(lines)
}

func TestWrapTextWithWideRunes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "pure wide runes",
			text:  "你好世界",
			width: 4,
			want:  []string{"你好", "世界"},
		},
		{
			name:  "mix wide and ascii",
			text:  "你好 hello",
			width: 4,
			want:  []string{"你好", "hell", "o"},
		},
		{
			name:  "hard line breaks kept",
			text:  "one\n\ntwo",
			width: 10,
			want:  []string{"one", "", "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := plain(WrapText(tt.text, lipgloss.NewStyle(), tt.width))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("WrapText(%q,%d)=%q want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapSpansCollapsesWhitespaceAcrossSpans(t *testing.T) {
	bold := lipgloss.NewStyle().Bold(true)
	spans := []Span{
		{Text: "  Hello"},
		{Text: " \n "},
		{Text: "world", Style: bold},
		{Text: ", this is a test.  "},
	}
	got := plain(WrapSpans(spans, 12))
	want := []string{"Hello world,", "this is a", "test."}
	if !slices.Equal(got, want) {
		t.Fatalf("WrapSpans = %q, want %q", got, want)
	}
	if got := plain(WrapSpans(spans, 0)); !slices.Equal(got, []string{"Hello world, this is a test."}) {
		t.Fatalf("WrapSpans(width=0) = %q", got)
	}
}

func TestWrapPreformattedKeepsSpaces(t *testing.T) {
	got := plain(WrapPreformatted([]Span{{Text: "if x {\n    y()\n}\n"}}, 6))
	want := []string{"if x {", "    y(", ")", "}"}
	if !slices.Equal(got, want) {
		t.Fatalf("WrapPreformatted = %q, want %q", got, want)
	}
}
