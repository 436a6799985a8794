package formatted

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/ByLCY/folio/surface"
)

// ParseMarkup turns inline markup into spans. Recognised tags:
//
//	<b> <strong> <i> <em> <u> <strikethrough> <s> <del> <sub> <sup>
//	<font name="" size=""> <color rgb=""> <link href="" anchor=""> <a href=""> <br>
//
// Unknown tags are ignored but their text is kept. Entities are decoded.
func ParseMarkup(markup string) ([]Span, error) {
	z := html.NewTokenizer(strings.NewReader(markup))
	stack := []frame{{}}
	var spans []Span

	emit := func(text string) {
		if text == "" {
			return
		}
		f := stack[len(stack)-1].format
		if n := len(spans); n > 0 && sameFormat(spans[n-1].Format, f) {
			spans[n-1].Text += text
			return
		}
		spans = append(spans, Span{Text: text, Format: f})
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return spans, nil
			}
			return nil, fmt.Errorf("parse markup: %w", z.Err())
		case html.TextToken:
			emit(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "br" {
				emit("\n")
				continue
			}
			f, known, err := applyTag(stack[len(stack)-1].format, tok)
			if err != nil {
				return nil, err
			}
			if !known || tok.Type == html.SelfClosingTagToken {
				continue
			}
			stack = append(stack, frame{tag: tok.Data, format: f})
		case html.EndTagToken:
			tok := z.Token()
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].tag == tok.Data {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

type frame struct {
	tag    string
	format Format
}

func applyTag(f Format, tok html.Token) (Format, bool, error) {
	switch tok.Data {
	case "b", "strong":
		f.Styles |= Bold
	case "i", "em":
		f.Styles |= Italic
	case "u":
		f.Styles |= Underline
	case "strikethrough", "s", "del":
		f.Styles |= Strikethrough
	case "sub":
		f.Styles |= Subscript
	case "sup":
		f.Styles |= Superscript
	case "font":
		for _, a := range tok.Attr {
			switch a.Key {
			case "name":
				f.Font = a.Val
			case "size":
				size, err := strconv.ParseFloat(strings.TrimSuffix(a.Val, "pt"), 64)
				if err != nil {
					return f, true, fmt.Errorf("font size %q: %w", a.Val, err)
				}
				f.Size = size
			}
		}
	case "color":
		for _, a := range tok.Attr {
			if a.Key == "rgb" || a.Key == "c" {
				c, err := surface.ParseColor(a.Val)
				if err != nil {
					return f, true, err
				}
				f.Color = &c
			}
		}
	case "link", "a":
		for _, a := range tok.Attr {
			switch a.Key {
			case "href":
				f.Link = a.Val
			case "anchor", "name":
				f.Anchor = a.Val
			}
		}
	default:
		return f, false, nil
	}
	return f, true, nil
}

// sameFormat compares formats by value, following colour pointers.
func sameFormat(a, b Format) bool {
	return a.Styles == b.Styles && a.Font == b.Font && a.Size == b.Size &&
		sameColor(a.Color, b.Color) && sameColor(a.Fill, b.Fill) &&
		a.BorderWidth == b.BorderWidth && sameColor(a.BorderColor, b.BorderColor) &&
		a.BorderStyle == b.BorderStyle && a.Link == b.Link && a.Anchor == b.Anchor
}

func sameColor(a, b *surface.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
