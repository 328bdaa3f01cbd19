// Package convert tests the body markup converter.
package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newConverter() *Markdown {
	return New(zap.NewNop())
}

// TestConvertHeadingBlocks renders emphasized blocks as heading lines.
func TestConvertHeadingBlocks(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bold weight heading",
			in:   `<div style="font-weight: 700;">주요 내용</div>`,
			want: "## 주요 내용  ",
		},
		{
			name: "large font heading",
			in:   `<div style="font-size: 18px;">소제목</div>`,
			want: "## 소제목  ",
		},
		{
			name: "plain block",
			in:   `<div>본문 문단</div>`,
			want: "본문 문단  ",
		},
		{
			name: "unrelated style stays plain",
			in:   `<div style="color: red;">본문</div>`,
			want: "본문  ",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, newConverter().Convert(tc.in))
		})
	}
}

// TestConvertImages prefers the lazy-load source and defaults the alt text.
func TestConvertImages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "data-src wins over src",
			in:   `<img data-src="https://img.example.com/a.jpg" src="placeholder.gif" alt="사진">`,
			want: "![사진](https://img.example.com/a.jpg)  ",
		},
		{
			name: "src fallback",
			in:   `<img src="https://img.example.com/b.jpg" alt="사진">`,
			want: "![사진](https://img.example.com/b.jpg)  ",
		},
		{
			name: "missing alt gets placeholder",
			in:   `<img src="https://img.example.com/c.jpg">`,
			want: "![이미지](https://img.example.com/c.jpg)  ",
		},
		{
			name: "no source produces nothing",
			in:   `<img alt="사진">`,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, newConverter().Convert(tc.in))
		})
	}
}

// TestConvertTextNewlines replaces embedded newlines with hard breaks.
func TestConvertTextNewlines(t *testing.T) {
	t.Parallel()

	got := newConverter().Convert("첫 줄\n둘째 줄")
	assert.Equal(t, "첫 줄  둘째 줄", got)
}

// TestConvertNestedBody walks a realistic article fragment.
func TestConvertNestedBody(t *testing.T) {
	t.Parallel()

	in := `<div id="dic_area">` +
		`<div style="font-weight: 700;">개요</div>` +
		`<img data-src="https://img.example.com/lead.jpg" alt="현장 사진">` +
		`본문 텍스트` +
		`</div>`

	got := newConverter().Convert(in)
	assert.Contains(t, got, "## 개요  ")
	assert.Contains(t, got, "![현장 사진](https://img.example.com/lead.jpg)  ")
	assert.Contains(t, got, "본문 텍스트")
}

// TestConvertIdempotentOnPlainText checks converted plain text survives a
// second pass unchanged.
func TestConvertIdempotentOnPlainText(t *testing.T) {
	t.Parallel()

	c := newConverter()
	first := c.Convert("한 줄 요약\n다음 줄")
	second := c.Convert(first)
	assert.Equal(t, first, second)
}

// TestConvertMalformedMarkupNeverPanics feeds garbage and expects quiet output.
func TestConvertMalformedMarkupNeverPanics(t *testing.T) {
	t.Parallel()

	c := newConverter()
	inputs := []string{
		"",
		"<div><div><div>",
		"<img",
		strings.Repeat("<", 100),
		"<div style=>half</div",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { _ = c.Convert(in) })
	}
}
