package dsl

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	symbols          = dslLexer.Symbols()
	newlineTokenType = symbols["Newline"]
	lbraceTokenType  = symbols["LBrace"]
	rbraceTokenType  = symbols["RBrace"]
	symbolTokenType  = symbols["Symbol"]
	stringTokenType  = symbols["String"]

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a .folio file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'doc' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section represents a top-level section (meta/resources/page).
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Page      *PageSection      `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Page != nil:
		return "page"
	default:
		return "unknown"
	}
}

// MetaSection captures metadata assignments.
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// ResourcesSection groups resource declarations.
type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// PageSection represents a concrete page description.
type PageSection struct {
	Spec  PageSpec `parser:"'page' @@"`
	Block *Block   `parser:"@@"`
}

// PageSpec stores header tokens (eg: size, orientation).
type PageSpec struct {
	Size   string    `parser:"@Ident"`
	Params []*Lexeme `parser:"@@*"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement inside a block (assignment/command/text literal).
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command describes layout/drawing instructions.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// Text concatenates the string literals of the block, ignoring commands.
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, st := range b.Statements {
		if st.Text != nil {
			sb.WriteString(string(st.Text.Value))
		}
	}
	return sb.String()
}

// Commands returns the commands of the block named name, or all of them when
// name is empty.
func (b *Block) Commands(name string) []*Command {
	if b == nil {
		return nil
	}
	var out []*Command
	for _, st := range b.Statements {
		if st.Command != nil && (name == "" || st.Command.Name == name) {
			out = append(out, st.Command)
		}
	}
	return out
}

// Options splits the arguments of a command into key/value pairs. Words
// listed in flags stand alone and map to "true"; other arguments are read
// in pairs. A trailing key without a value is an error.
func (c *Command) Options(flags ...string) (map[string]string, error) {
	out := map[string]string{}
	for i := 0; i < len(c.Args); i++ {
		key := c.Args[i].Value
		if slices.Contains(flags, key) {
			out[key] = "true"
			continue
		}
		if i+1 >= len(c.Args) {
			return nil, fmt.Errorf("%s: 第 %d 行 %s 缺少取值", c.Name, c.Pos.Line, key)
		}
		i++
		out[key] = c.Args[i].Value
	}
	return out, nil
}

// TextLiteral encapsulates raw string statements within blocks.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value is the right-hand side of an assignment.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// Scalar returns the value as written, without quotes. Arrays yield "".
func (v *Value) Scalar() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Expr != nil:
		var sb strings.Builder
		for _, part := range v.Expr.Parts {
			sb.WriteString(part.Value)
		}
		return sb.String()
	}
	return ""
}

// Strings flattens an array value; a scalar becomes a one-element slice.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		if s := v.Scalar(); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		if s := item.Scalar(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Expression keeps the raw tokens of an unquoted value such as a colour
// resource name or `${path}`.
type Expression struct {
	Parts []*Lexeme
}

// Parse implements participle.Parseable for Expression. It consumes tokens
// until a separator at nesting depth zero.
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	depth := 0
	for {
		tok := lex.Peek()
		if tok.EOF() || endsExpression(tok, depth) {
			break
		}
		lexeme, err := consumeLexeme(lex)
		if err != nil {
			return err
		}
		switch lexeme.Raw {
		case "(", "[":
			depth++
		case ")", "]":
			depth = max(depth-1, 0)
		}
		e.Parts = append(e.Parts, lexeme)
	}
	if len(e.Parts) == 0 {
		return participle.NextMatch
	}
	return nil
}

// Lexeme captures a single lexical token (used by commands/expressions).
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable so Lexeme can act as a grammar atom.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if endsArgs(tok) {
		return participle.NextMatch
	}

	lexeme, err := consumeLexeme(lex)
	if err != nil {
		return err
	}
	*l = *lexeme
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// consumeLexeme takes the next token as a Lexeme; string tokens are
// unquoted.
func consumeLexeme(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	lx := &Lexeme{Type: tokenName(tok.Type), Value: tok.Value, Raw: tok.Value, Pos: tok.Pos}
	if tok.Type == stringTokenType {
		v, err := strconv.Unquote(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tok.Pos, err)
		}
		lx.Value = v
	}
	return lx, nil
}

func tokenName(tt lexer.TokenType) string {
	for name, t := range symbols {
		if t == tt {
			return name
		}
	}
	return fmt.Sprintf("#%d", tt)
}

// endsArgs reports whether tok closes the argument list of a command.
func endsArgs(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineTokenType, rbraceTokenType, lbraceTokenType:
		return true
	}
	return tok.Type == symbolTokenType && tok.Value == ";"
}

func endsExpression(tok *lexer.Token, depth int) bool {
	switch {
	case tok.Type == symbolTokenType && tok.Value == "]":
		return depth == 0
	case depth > 0:
		return false
	case tok.Type == newlineTokenType, tok.Type == lbraceTokenType, tok.Type == rbraceTokenType:
		return true
	case tok.Type == symbolTokenType:
		return tok.Value == ";" || tok.Value == ","
	}
	return false
}
