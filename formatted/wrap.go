package formatted

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/folio/surface"
)

const fitEpsilon = 1e-6

type tokenKind uint8

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenNewline
)

// token is a word, a run of spaces or a hard newline from one span.
type token struct {
	text  string
	kind  tokenKind
	span  int
	width float64
}

// face is the resolved font of one span for one layout pass.
type face struct {
	font    surface.Font
	metrics surface.Metrics
	yOffset float64
}

// line is a range of tokens placed on one line. Trailing spaces are not
// part of [start, end).
type line struct {
	start, end int
	width      float64
	spaces     int
	hard       bool
	metrics    surface.Metrics
}

func (l line) height() float64 { return l.metrics.Height() }

// tokenize splits NFC-normalised span text into words, space runs and hard
// newlines. Carriage returns are dropped.
func tokenize(spans []Span) []token {
	var tokens []token
	for i, sp := range spans {
		text := norm.NFC.String(sp.Text)
		var b strings.Builder
		kind := tokenWord
		flush := func() {
			if b.Len() == 0 {
				return
			}
			tokens = append(tokens, token{text: b.String(), kind: kind, span: i})
			b.Reset()
		}
		for _, r := range text {
			switch {
			case r == '\r':
				continue
			case r == '\n':
				flush()
				tokens = append(tokens, token{text: "\n", kind: tokenNewline, span: i})
				continue
			}
			k := tokenWord
			if unicode.IsSpace(r) {
				k = tokenSpace
			}
			if b.Len() > 0 && k != kind {
				flush()
			}
			kind = k
			b.WriteRune(r)
		}
		flush()
	}
	return tokens
}

// measureTokens fills in token widths, switching fonts once per span.
func (b *Box) measureTokens(tokens []token, faces []face) error {
	for i := range b.spans {
		err := surface.WithFont(b.s, faces[i].font, func() error {
			for k := range tokens {
				if tokens[k].span == i && tokens[k].kind != tokenNewline {
					tokens[k].width = b.s.TextWidth(tokens[k].text, b.opts.Kerning)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Box) textWidth(f surface.Font, text string) (float64, error) {
	var w float64
	err := surface.WithFont(b.s, f, func() error {
		w = b.s.TextWidth(text, b.opts.Kerning)
		return nil
	})
	return w, err
}

// wrap breaks tokens into lines no wider than width. Words that do not fit
// on an empty line are split by character; the returned token slice holds
// the pieces.
func (b *Box) wrap(tokens []token, faces []face, width float64) ([]token, []line, error) {
	var lines []line
	cur := line{}
	words := 0
	running := 0.0
	runningSpaces := 0

	finish := func(next int, hard bool) {
		if words == 0 {
			cur.end = cur.start
			cur.width = 0
			cur.spaces = 0
		}
		cur.hard = hard
		cur.metrics = lineMetrics(tokens, faces, cur, next)
		lines = append(lines, cur)
		cur = line{start: next}
		words = 0
		running = 0
		runningSpaces = 0
	}

	i := 0
	for i < len(tokens) {
		t := tokens[i]
		switch t.kind {
		case tokenNewline:
			finish(i+1, true)
			i++
		case tokenSpace:
			if words == 0 {
				cur.start = i + 1
			} else {
				running += t.width
				runningSpaces += utf8.RuneCountInString(t.text)
			}
			i++
		default:
			if running+t.width <= width+fitEpsilon {
				running += t.width
				cur.end = i + 1
				cur.width = running
				cur.spaces = runningSpaces
				words++
				i++
				continue
			}
			if words > 0 {
				finish(i, false)
				continue
			}
			head, tail, err := b.splitWord(t, faces[t.span].font, width)
			if err != nil {
				return nil, nil, err
			}
			tokens = append(tokens[:i], append([]token{head, tail}, tokens[i+1:]...)...)
			cur.end = i + 1
			cur.width = head.width
			words++
			finish(i+1, false)
			i++
		}
	}
	if words > 0 {
		finish(len(tokens), false)
	}
	return tokens, lines, nil
}

// splitWord returns the longest prefix of t that fits in width and the rest.
func (b *Box) splitWord(t token, f surface.Font, width float64) (token, token, error) {
	runes := []rune(t.text)
	n := 0
	fitted := 0.0
	for n < len(runes) {
		w, err := b.textWidth(f, string(runes[:n+1]))
		if err != nil {
			return token{}, token{}, err
		}
		if w > width+fitEpsilon {
			break
		}
		fitted = w
		n++
	}
	if n == 0 {
		return token{}, token{}, ErrCannotFit
	}
	rest, err := b.textWidth(f, string(runes[n:]))
	if err != nil {
		return token{}, token{}, err
	}
	head := token{text: string(runes[:n]), kind: tokenWord, span: t.span, width: fitted}
	tail := token{text: string(runes[n:]), kind: tokenWord, span: t.span, width: rest}
	return head, tail, nil
}

// lineMetrics takes the tallest ascender and deepest descender of the faces
// used on the line. An empty line uses the face of the token that ended it.
func lineMetrics(tokens []token, faces []face, l line, next int) surface.Metrics {
	var m surface.Metrics
	seen := false
	for k := l.start; k < l.end; k++ {
		fm := faces[tokens[k].span].metrics
		if !seen {
			m = fm
			seen = true
			continue
		}
		m.Ascender = max(m.Ascender, fm.Ascender)
		m.Descender = min(m.Descender, fm.Descender)
		m.LineGap = max(m.LineGap, fm.LineGap)
	}
	if seen || len(faces) == 0 {
		return m
	}
	k := min(next-1, len(tokens)-1)
	if k < 0 {
		return faces[0].metrics
	}
	return faces[tokens[k].span].metrics
}

// remainder regroups the tokens from index from into spans carrying their
// original formats. Leading spaces are dropped.
func remainder(spans []Span, tokens []token, from int) []Span {
	for from < len(tokens) && tokens[from].kind == tokenSpace {
		from++
	}
	var out []Span
	for k := from; k < len(tokens); k++ {
		t := tokens[k]
		if n := len(out); n > 0 && k > from && tokens[k-1].span == t.span {
			out[n-1].Text += t.text
			continue
		}
		out = append(out, Span{Text: t.text, Format: spans[t.span].Format})
	}
	return out
}
