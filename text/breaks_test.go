package text

import (
	"testing"

	"golang.org/x/text/language"

	"folio/style"
)

func TestCollapse(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		ws         style.WhiteSpace
		afterSpace bool
		want       string
	}{
		{"normal", "  a \n\t b  ", style.WhiteSpaceNormal, false, " a b "},
		{"after space", "  a b", style.WhiteSpaceNormal, true, "a b"},
		{"nowrap", "a\n\nb", style.WhiteSpaceNowrap, false, "a b"},
		{"pre keeps", "a  \n b", style.WhiteSpacePre, false, "a  \n b"},
		{"pre tabs", "a\tb", style.WhiteSpacePreWrap, false, "a        b"},
		{"pre-line", "a   \n   b  c", style.WhiteSpacePreLine, false, "a\nb c"},
		{"crlf", "a\r\nb", style.WhiteSpacePre, false, "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Collapse(tt.in, tt.ws, tt.afterSpace); got != tt.want {
				t.Errorf("Collapse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	tests := []struct {
		in, transform, want string
	}{
		{"hello world", "uppercase", "HELLO WORLD"},
		{"Hello World", "lowercase", "hello world"},
		{"hello wORLD", "capitalize", "Hello WORLD"},
		{"Hello", "none", "Hello"},
	}
	for _, tt := range tests {
		if got := Transform(tt.in, tt.transform, language.English); got != tt.want {
			t.Errorf("Transform(%q, %s) = %q, want %q", tt.in, tt.transform, got, tt.want)
		}
	}
}

func TestApplyHyphens(t *testing.T) {
	in := "co" + SoftHyphen + "operate"
	if got := ApplyHyphens(in, "none", nil); got != "cooperate" {
		t.Errorf("none = %q", got)
	}
	if got := ApplyHyphens(in, "manual", nil); got != in {
		t.Errorf("manual = %q", got)
	}
	if got := ApplyHyphens(in, "auto", nil); got != in {
		t.Errorf("auto without dictionary = %q", got)
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		ws       style.WhiteSpace
		breakAll bool
		want     []Segment
	}{
		{
			name: "words",
			in:   "one two  three",
			ws:   style.WhiteSpaceNormal,
			want: []Segment{{Text: "one", Space: " "}, {Text: "two", Space: "  "}, {Text: "three"}},
		},
		{
			name: "hyphens",
			in:   "well-known co" + SoftHyphen + "op -5",
			ws:   style.WhiteSpaceNormal,
			want: []Segment{{Text: "well-"}, {Text: "known", Space: " "}, {Text: "co", Hyphen: true}, {Text: "op", Space: " "}, {Text: "-5"}},
		},
		{
			name: "nowrap",
			in:   "one two",
			ws:   style.WhiteSpaceNowrap,
			want: []Segment{{Text: "one two"}},
		},
		{
			name: "pre",
			in:   "a b\nc",
			ws:   style.WhiteSpacePre,
			want: []Segment{{Text: "a b", Mandatory: true}, {Text: "c"}},
		},
		{
			name: "pre-line",
			in:   "a b\nc",
			ws:   style.WhiteSpacePreLine,
			want: []Segment{{Text: "a", Space: " "}, {Text: "b", Mandatory: true}, {Text: "c"}},
		},
		{
			name:     "break-all",
			in:       "abc d",
			ws:       style.WhiteSpaceNormal,
			breakAll: true,
			want:     []Segment{{Text: "a"}, {Text: "b"}, {Text: "c", Space: " "}, {Text: "d"}},
		},
		{
			name: "empty",
			in:   "",
			ws:   style.WhiteSpaceNormal,
			want: []Segment{{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segments(tt.in, tt.ws, tt.breakAll)
			if len(got) != len(tt.want) {
				t.Fatalf("Segments(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
