package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/tilth/pkg/core"
)

func blog() core.Collection {
	return core.Collection{
		"blog/alpha": {"title": "Alpha", "weight": 3, "tags": []any{"go", "cli"}, "draft": false, "author": map[string]any{"name": "Ada"}},
		"blog/beta":  {"title": "Beta", "weight": 1, "tags": []any{"yaml"}, "draft": true, "author": map[string]any{"name": "Lin"}},
		"blog/gamma": {"title": "Gamma ray", "weight": 2.5, "tags": []any{"go"}},
		"docs/intro": {"title": "Intro", "weight": 10},
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestConditions(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		want []string
	}{
		{"Eq", Condition{"title", OpEq, "Beta"}, []string{"blog/beta"}},
		{"Eq Numeric String", Condition{"weight", OpEq, "3"}, []string{"blog/alpha"}},
		{"Eq Bool String", Condition{"draft", OpEq, "true"}, []string{"blog/beta"}},
		{"Ne Includes Missing", Condition{"draft", OpNe, true}, []string{"blog/alpha", "blog/gamma", "docs/intro"}},
		{"Lt", Condition{"weight", OpLt, 3}, []string{"blog/beta", "blog/gamma"}},
		{"Le", Condition{"weight", OpLe, 3}, []string{"blog/alpha", "blog/beta", "blog/gamma"}},
		{"Gt", Condition{"weight", OpGt, "2.5"}, []string{"blog/alpha", "docs/intro"}},
		{"Ge", Condition{"weight", OpGe, 2.5}, []string{"blog/alpha", "blog/gamma", "docs/intro"}},
		{"String Order", Condition{"title", OpLt, "C"}, []string{"blog/alpha", "blog/beta"}},
		{"Contains List", Condition{"tags", OpContains, "go"}, []string{"blog/alpha", "blog/gamma"}},
		{"Contains String", Condition{"title", OpContains, "ray"}, []string{"blog/gamma"}},
		{"In", Condition{"title", OpIn, []any{"Alpha", "Intro"}}, []string{"blog/alpha", "docs/intro"}},
		{"In Comma String", Condition{"weight", OpIn, "1, 10"}, []string{"blog/beta", "docs/intro"}},
		{"Not In", Condition{"title", OpNotIn, "Alpha,Beta"}, []string{"blog/gamma", "docs/intro"}},
		{"Like", Condition{"title", OpLike, "G*"}, []string{"blog/gamma"}},
		{"Exists", Condition{"draft", OpExists, true}, []string{"blog/alpha", "blog/beta"}},
		{"Not Exists", Condition{"draft", OpExists, false}, []string{"blog/gamma", "docs/intro"}},
		{"Dotted Path", Condition{"author.name", OpEq, "Lin"}, []string{"blog/beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Select(blog(), Options{Where: []Condition{tt.cond}}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Select(%v) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func expectIDs(t *testing.T, items []Item, want ...string) {
	t.Helper()
	if got := ids(items); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestSelect(t *testing.T) {
	t.Run("Match Glob", func(t *testing.T) {
		expectIDs(t, Select(blog(), Options{Match: "blog/*"}), "blog/alpha", "blog/beta", "blog/gamma")
	})

	t.Run("Order Offset Limit", func(t *testing.T) {
		got := Select(blog(), Options{
			OrderBy: []Order{{Field: "weight", Desc: true}},
			Offset:  1,
			Limit:   2,
		})
		expectIDs(t, got, "blog/alpha", "blog/gamma")
	})

	t.Run("Offset Past End", func(t *testing.T) {
		if got := Select(blog(), Options{Offset: 10}); len(got) != 0 {
			t.Errorf("Select() = %v, want nothing", ids(got))
		}
	})

	t.Run("Missing Sort Field Goes Last", func(t *testing.T) {
		got := Select(blog(), Options{OrderBy: []Order{{Field: "draft"}}})
		expectIDs(t, got, "blog/alpha", "blog/beta", "blog/gamma", "docs/intro")
	})

	t.Run("Apply Keeps Data", func(t *testing.T) {
		got := Apply(blog(), Options{Where: []Condition{{"tags", OpContains, "yaml"}}})
		if len(got) != 1 || got["blog/beta"]["title"] != "Beta" {
			t.Errorf("Apply() = %v, want only blog/beta", got)
		}
	})

	t.Run("Func", func(t *testing.T) {
		f := Options{Limit: 1}.Func()
		if n := len(f(blog())); n != 1 {
			t.Errorf("limited filter kept %d entries, want 1", n)
		}
	})
}

func TestValidate(t *testing.T) {
	if err := (Options{Where: []Condition{{"a", OpEq, 1}}, Match: "blog/**"}).Validate(); err != nil {
		t.Errorf("valid options rejected: %v", err)
	}
	if err := (Options{Where: []Condition{{"a", "~", 1}}}).Validate(); !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("unknown operator: err = %v", err)
	}
	if err := (Options{Match: "blog/[a"}).Validate(); err == nil {
		t.Error("a bad glob should be rejected")
	}
	if err := (Options{Limit: -1}).Validate(); err == nil {
		t.Error("a negative limit should be rejected")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr string
		want Condition
	}{
		{"title=Foo", Condition{"title", OpEq, "Foo"}},
		{"title != Foo", Condition{"title", OpNe, "Foo"}},
		{"weight>=3", Condition{"weight", OpGe, "3"}},
		{"weight<3", Condition{"weight", OpLt, "3"}},
		{"url=a>b", Condition{"url", OpEq, "a>b"}},
		{"tags contains go", Condition{"tags", OpContains, "go"}},
		{"status in draft,review", Condition{"status", OpIn, "draft,review"}},
		{"status nin draft", Condition{"status", OpNotIn, "draft"}},
		{"title like Foo*", Condition{"title", OpLike, "Foo*"}},
		{"draft exists", Condition{"draft", OpExists, true}},
		{"!draft", Condition{"draft", OpExists, false}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "justaword", "=Foo"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}

func TestParseOrder(t *testing.T) {
	for in, want := range map[string]Order{
		"-date":      {Field: "date", Desc: true},
		"title desc": {Field: "title", Desc: true},
		"title":      {Field: "title"},
	} {
		got, err := ParseOrder(in)
		if err != nil || got != want {
			t.Errorf("ParseOrder(%q) = %+v, %v; want %+v", in, got, err, want)
		}
	}

	if _, err := ParseOrder("title sideways"); err == nil {
		t.Error("ParseOrder(title sideways) should fail")
	}
}
