// Package filter selects, orders and pages entry collections.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/tilth/pkg/core"
)

// Operators understood by Condition.
const (
	OpEq       = "="
	OpNe       = "!="
	OpLt       = "<"
	OpLe       = "<="
	OpGt       = ">"
	OpGe       = ">="
	OpContains = "contains"
	OpIn       = "in"
	OpNotIn    = "nin"
	OpLike     = "like"
	OpExists   = "exists"
)

var ErrUnknownOperator = errors.New("unknown operator")

// Condition tests one field of an entry. Field is a dotted path into the
// entry data.
type Condition struct {
	Field string
	Op    string
	Value any
}

// Order sorts by one field. Entries missing the field sort last.
type Order struct {
	Field string
	Desc  bool
}

// Options describes a selection over a collection. The zero value keeps
// every entry.
type Options struct {
	Where   []Condition
	OrderBy []Order
	Offset  int
	Limit   int
	// Match is a doublestar glob tested against entry ids.
	Match string
}

// Item is one entry of an ordered selection.
type Item struct {
	ID   string
	Data core.Data
}

// Validate checks operators and the id glob.
func (o Options) Validate() error {
	for _, c := range o.Where {
		if !knownOp(c.Op) {
			return fmt.Errorf("%w %q", ErrUnknownOperator, c.Op)
		}
	}
	if o.Match != "" && !doublestar.ValidatePattern(o.Match) {
		return fmt.Errorf("invalid match pattern %q", o.Match)
	}
	if o.Offset < 0 || o.Limit < 0 {
		return errors.New("offset and limit must not be negative")
	}
	return nil
}

// Func adapts o to a core.Filter.
func (o Options) Func() core.Filter {
	return func(c core.Collection) core.Collection {
		return Apply(c, o)
	}
}

// Apply returns the entries of c selected by o. Offset and Limit are
// applied after ordering by OrderBy and then by id.
func Apply(c core.Collection, o Options) core.Collection {
	items := Select(c, o)
	out := make(core.Collection, len(items))
	for _, it := range items {
		out[it.ID] = it.Data
	}
	return out
}

// Select returns the entries of c selected by o, in order.
func Select(c core.Collection, o Options) []Item {
	kept := make(core.Collection, len(c))
	for id, data := range c {
		if o.Match != "" {
			if ok, err := doublestar.Match(o.Match, id); err != nil || !ok {
				continue
			}
		}
		if !matchesAll(data, o.Where) {
			continue
		}
		kept[id] = data
	}

	items := Sorted(kept, o.OrderBy)

	if o.Offset > 0 {
		if o.Offset >= len(items) {
			return nil
		}
		items = items[o.Offset:]
	}
	if o.Limit > 0 && o.Limit < len(items) {
		items = items[:o.Limit]
	}
	return items
}

// Sorted returns the entries of c ordered by orders, ties broken by id.
func Sorted(c core.Collection, orders []Order) []Item {
	items := make([]Item, 0, len(c))
	for id, data := range c {
		items = append(items, Item{ID: id, Data: data})
	}

	sort.SliceStable(items, func(i, j int) bool {
		for _, o := range orders {
			a, aok := core.Lookup(items[i].Data, o.Field)
			b, bok := core.Lookup(items[j].Data, o.Field)
			switch {
			case !aok && !bok:
				continue
			case !aok:
				return false
			case !bok:
				return true
			}
			n := compare(a, b)
			if n == 0 {
				continue
			}
			if o.Desc {
				return n > 0
			}
			return n < 0
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func matchesAll(data core.Data, conds []Condition) bool {
	for _, c := range conds {
		if !c.Matches(data) {
			return false
		}
	}
	return true
}

// Matches reports whether data satisfies the condition.
func (c Condition) Matches(data core.Data) bool {
	v, ok := core.Lookup(data, c.Field)

	switch c.Op {
	case OpExists:
		if want, isBool := c.Value.(bool); isBool && !want {
			return !ok
		}
		return ok
	case OpNe:
		return !ok || !equal(v, c.Value)
	case OpNotIn:
		return !ok || !inList(v, c.Value)
	}

	if !ok {
		return false
	}

	switch c.Op {
	case OpEq:
		return equal(v, c.Value)
	case OpLt:
		return ordered(v, c.Value) && compare(v, c.Value) < 0
	case OpLe:
		return ordered(v, c.Value) && compare(v, c.Value) <= 0
	case OpGt:
		return ordered(v, c.Value) && compare(v, c.Value) > 0
	case OpGe:
		return ordered(v, c.Value) && compare(v, c.Value) >= 0
	case OpContains:
		return contains(v, c.Value)
	case OpIn:
		return inList(v, c.Value)
	case OpLike:
		ok, err := doublestar.Match(fmt.Sprint(c.Value), fmt.Sprint(v))
		return err == nil && ok
	default:
		return false
	}
}

func knownOp(op string) bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpContains, OpIn, OpNotIn, OpLike, OpExists:
		return true
	}
	return false
}

func contains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		return strings.Contains(h, fmt.Sprint(needle))
	case []any:
		for _, item := range h {
			if equal(item, needle) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range h {
			if equal(item, needle) {
				return true
			}
		}
		return false
	case map[string]any:
		_, ok := h[fmt.Sprint(needle)]
		return ok
	default:
		return false
	}
}

// inList tests v against a list value. A string list is split on commas.
func inList(v, list any) bool {
	switch l := list.(type) {
	case []any:
		for _, item := range l {
			if equal(v, item) {
				return true
			}
		}
	case []string:
		for _, item := range l {
			if equal(v, item) {
				return true
			}
		}
	case string:
		for _, item := range strings.Split(l, ",") {
			if equal(v, strings.TrimSpace(item)) {
				return true
			}
		}
	}
	return false
}
