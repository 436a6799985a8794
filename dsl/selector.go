package dsl

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 行列选择器的小语法，例如：
//
//	3
//	1..4
//	[0, 2, 5]
//	even | odd | last | all
//	stripes(stripes: 3, thickness: 1, step: 2, offset: 0)
var (
	selectorLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Range", Pattern: `\.\.`},
		{Name: "Int", Pattern: `-?\d+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Punct", Pattern: `[][(),:]`},
	})

	selectorParser = participle.MustBuild[SelectorExpr](
		participle.Lexer(selectorLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// SelectorExpr is the AST of one row or column selector.
type SelectorExpr struct {
	Stripes *StripesExpr `parser:"  @@"`
	Span    *SpanExpr    `parser:"| @@"`
	List    *ListExpr    `parser:"| @@"`
	Index   *int         `parser:"| @Int"`
	Keyword *string      `parser:"| @Ident"`
}

// StripesExpr captures `stripes(key: value, ...)`.
type StripesExpr struct {
	Args []*StripesArg `parser:"'stripes' '(' ( @@ ( ',' @@ )* )? ')'"`
}

type StripesArg struct {
	Key   string `parser:"@Ident ':'"`
	Value int    `parser:"@Int"`
}

// SpanExpr is an inclusive range `lo..hi`.
type SpanExpr struct {
	Lo int `parser:"@Int Range"`
	Hi int `parser:"@Int"`
}

type ListExpr struct {
	Values []int `parser:"'[' ( @Int ( ',' @Int )* )? ']'"`
}

// ParseSelector parses a selector string and returns it in one of the shapes
// accepted by table.ParseSelector: int, [2]int, []int, string or
// map[string]int.
func ParseSelector(input string) (any, error) {
	expr, err := selectorParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("选择器 %q 无法解析: %w", input, err)
	}
	return expr.Spec()
}

// Spec converts the expression into a table selector spec.
func (e *SelectorExpr) Spec() (any, error) {
	switch {
	case e.Stripes != nil:
		m := make(map[string]int, len(e.Stripes.Args))
		for _, a := range e.Stripes.Args {
			key := strings.ToLower(a.Key)
			if _, dup := m[key]; dup {
				return nil, fmt.Errorf("stripes 参数 %s 重复", a.Key)
			}
			m[key] = a.Value
		}
		return m, nil
	case e.Span != nil:
		return [2]int{e.Span.Lo, e.Span.Hi}, nil
	case e.List != nil:
		return append([]int{}, e.List.Values...), nil
	case e.Index != nil:
		return *e.Index, nil
	case e.Keyword != nil:
		return strings.ToLower(*e.Keyword), nil
	default:
		return nil, fmt.Errorf("空选择器")
	}
}
