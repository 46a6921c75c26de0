package csvio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		delim rune
		want  []string
	}{
		{
			name: "plain fields",
			line: "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "empty line is one empty field",
			line: "",
			want: []string{""},
		},
		{
			name: "trailing delimiter yields trailing empty field",
			line: "a,b,",
			want: []string{"a", "b", ""},
		},
		{
			name: "quoted field containing delimiter",
			line: `"a,b",c`,
			want: []string{"a,b", "c"},
		},
		{
			name: "doubled quote is a literal quote",
			line: `"a""b"`,
			want: []string{`a"b`},
		},
		{
			name: "quotes mid-field toggle state",
			line: `he said "hi, there",next`,
			want: []string{"he said hi, there", "next"},
		},
		{
			name: "unterminated quote runs to end of line",
			line: `"a,b`,
			want: []string{"a,b"},
		},
		{
			name: "whitespace preserved by tokenizer",
			line: " a , b ",
			want: []string{" a ", " b "},
		},
		{
			name:  "alternate delimiter",
			line:  "a;b;c,d",
			delim: ';',
			want:  []string{"a", "b", "c,d"},
		},
		{
			name:  "zero delimiter falls back to comma",
			line:  "a,b",
			delim: 0,
			want:  []string{"a", "b"},
		},
		{
			name: "only quotes",
			line: `""`,
			want: []string{""},
		},
		{
			name: "unicode content",
			line: `Büroreinigung,"Köln, Altstadt"`,
			want: []string{"Büroreinigung", "Köln, Altstadt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLine(tt.line, tt.delim))
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "whitespace only",
			text: "   \n\t\n  ",
			want: []string{},
		},
		{
			name: "trailing newline dropped",
			text: "a,b\nc,d\n",
			want: []string{"a,b", "c,d"},
		},
		{
			name: "blank interior lines dropped",
			text: "a\n\n\nb",
			want: []string{"a", "b"},
		},
		{
			name: "CRLF stripped",
			text: "a,b\r\nc,d\r\n",
			want: []string{"a,b", "c,d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.text))
		})
	}
}
