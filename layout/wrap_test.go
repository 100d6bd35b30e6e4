package layout

import (
	"math/rand"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

func runeMeasure(perRune float64) func(string) float64 {
	return func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * perRune
	}
}

func contents(lines []TextLine) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Content
	}
	return out
}

func TestWrapTextBasics(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		width float64
		want  []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "hello world", 20, []string{"hello world"}},
		{"greedy", "aa bb cc dd", 5, []string{"aa bb", "cc dd"}},
		{"leading space dropped", "   hello", 10, []string{"hello"}},
		{"explicit newlines", "foo\n\nbar", 10, []string{"foo", "", "bar"}},
		{"oversized token", "abcdefghij", 3, []string{"abc", "def", "ghi", "j"}},
		{"tail shares line", "abcdefg hi", 4, []string{"abcd", "efg", "hi"}},
		{"unlimited", "a b c d e f", 0, []string{"a b c d e f"}},
	}
	for _, c := range cases {
		got := contents(WrapText(c.in, c.width, runeMeasure(1)))
		if strings.Join(got, "|") != strings.Join(c.want, "|") {
			t.Fatalf("%s: 期望 %q，实际 %q", c.name, c.want, got)
		}
	}
}

// TestWrapTextProperties 随机输入下检查：行宽不超限（单字符例外）、非空白字符不丢失不重排。
func TestWrapTextProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcdefé  \n")
	strip := func(s string) string {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	}
	for i := 0; i < 500; i++ {
		n := rng.Intn(80)
		rs := make([]rune, n)
		for j := range rs {
			rs[j] = alphabet[rng.Intn(len(alphabet))]
		}
		input := string(rs)
		width := float64(1 + rng.Intn(20))

		lines := WrapText(input, width, runeMeasure(1))
		if len(lines) == 0 {
			t.Fatalf("输入 %q 没有输出任何行", input)
		}
		var joined strings.Builder
		for _, ln := range lines {
			if ln.Width > width && utf8.RuneCountInString(ln.Content) > 1 {
				t.Fatalf("输入 %q 宽度 %g：行 %q 超宽 %g", input, width, ln.Content, ln.Width)
			}
			if ln.Content != strings.TrimRightFunc(ln.Content, unicode.IsSpace) {
				t.Fatalf("行尾空白未裁掉: %q", ln.Content)
			}
			joined.WriteString(ln.Content)
		}
		if strip(joined.String()) != strip(input) {
			t.Fatalf("字符丢失或重排: in=%q out=%q", input, contents(lines))
		}
	}
}

func TestWrapTextWidthMatchesMeasure(t *testing.T) {
	for _, ln := range WrapText("alpha beta gamma delta", 12, runeMeasure(1.5)) {
		if want := float64(utf8.RuneCountInString(ln.Content)) * 1.5; ln.Width != want {
			t.Fatalf("行 %q 宽度期望 %g，实际 %g", ln.Content, want, ln.Width)
		}
	}
}
