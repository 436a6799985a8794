package dsl_test

import (
	"reflect"
	"testing"

	"github.com/ByLCY/folio/dsl"
)

func TestParseSelector(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"3", 3},
		{" 1..4 ", [2]int{1, 4}},
		{"[0, 2, 5]", []int{0, 2, 5}},
		{"[]", []int{}},
		{"even", "even"},
		{"LAST", "last"},
		{"stripes(stripes: 3, thickness: 2)", map[string]int{"stripes": 3, "thickness": 2}},
		{"stripes()", map[string]int{}},
	}
	for _, tc := range cases {
		got, err := dsl.ParseSelector(tc.in)
		if err != nil {
			t.Fatalf("ParseSelector(%q): %v", tc.in, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseSelector(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for _, in := range []string{"", "1..", "[1,", "stripes(step: 1, step: 2)", "1 2"} {
		if _, err := dsl.ParseSelector(in); err == nil {
			t.Fatalf("ParseSelector(%q) accepted", in)
		}
	}
}
