package binding

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user":{"name":"Ada"},"items":[{"name":"apple","qty":3},{"name":"pear","qty":1.5}]}`)
	cases := map[string]string{
		"Hello, ${user.name}!":              "Hello, Ada!",
		"${items[0].name} x${items[0].qty}": "apple x3",
		"${items[1].qty}":                   "1.5",
		"${missing.path}":                   "${missing.path}",
		"${items[9].name}":                  "${items[9].name}",
		"no placeholders":                   "no placeholders",
		"${ user.name }":                    "Ada",
		"${items[x].name}":                  "${items[x].name}",
		"${user[0]}":                        "${user[0]}",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Interpolate("${x}", nil); got != "${x}" {
		t.Fatalf("nil data changed text: %q", got)
	}
}

func TestItemsAndScope(t *testing.T) {
	data := decode(t, `{"title":"T","items":[{"name":"a"},{"name":"b"}]}`)
	items, ok := Items(data, "items")
	if !ok || len(items) != 2 {
		t.Fatalf("items %v %v", items, ok)
	}
	if _, ok := Items(data, "title"); ok {
		t.Fatal("a string is not a list")
	}
	scoped := Scope(data, "item", items[1])
	if got := Interpolate("${title}/${item.name}", scoped); got != "T/b" {
		t.Fatalf("scoped interpolation %q", got)
	}
	if _, ok := data.(map[string]interface{})["item"]; ok {
		t.Fatal("Scope modified the original data")
	}
}
