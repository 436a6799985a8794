// Package binding 把 JSON 数据绑定到 DSL 文本中的 ${path} 占位符。
package binding

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。整数值的浮点数按整数输出。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := placeholder.FindStringSubmatch(match)[1]
		if path == "" {
			return match
		}
		if val, ok := Lookup(data, path); ok {
			return format(val)
		}
		return match
	})
}

func format(v any) string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}

// step is one hop of a path: a map key, or an array index when key is empty.
type step struct {
	key   string
	index int
}

// Lookup resolves a dotted path with optional [i] indexes, e.g.
// "items[0].name".
func Lookup(data any, path string) (any, bool) {
	steps, ok := parsePath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		switch c := current.(type) {
		case map[string]any:
			if st.key == "" {
				return nil, false
			}
			if current, ok = c[st.key]; !ok {
				return nil, false
			}
		case []any:
			if st.key != "" || st.index < 0 || st.index >= len(c) {
				return nil, false
			}
			current = c[st.index]
		default:
			return nil, false
		}
	}
	return current, true
}

func parsePath(path string) ([]step, bool) {
	var steps []step
	for segment := range strings.SplitSeq(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name})
		}
		if rest == "" {
			continue
		}
		for part := range strings.SplitSeq(strings.TrimSuffix(rest, "]"), "][") {
			idx, err := strconv.Atoi(part)
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: idx})
		}
	}
	return steps, true
}

// Items resolves path to an array, as used by repeated table rows.
func Items(data any, path string) ([]any, bool) {
	v, ok := Lookup(data, strings.TrimSpace(path))
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	return items, ok
}

// Scope returns data with name bound to value. The original map is left
// untouched.
func Scope(data any, name string, value any) any {
	out := map[string]any{}
	if m, ok := data.(map[string]any); ok {
		maps.Copy(out, m)
	}
	out[name] = value
	return out
}
