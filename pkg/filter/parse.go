package filter

import (
	"fmt"
	"strings"
)

// symbolic operators, longest first so "<=" wins over "<".
var symbolic = []string{OpLe, OpGe, OpNe, OpEq, OpLt, OpGt}

var worded = []string{OpContains, OpNotIn, OpIn, OpLike}

// Parse reads a condition written as "field<op>value" for symbolic
// operators ("title=Foo", "weight>=3"), "field <op> value" for worded ones
// ("tags contains go", "status in draft,review"), or "field exists" /
// "!field" for presence tests.
func Parse(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Condition{}, fmt.Errorf("empty condition")
	}

	if field, ok := strings.CutPrefix(expr, "!"); ok && !strings.ContainsAny(field, "=<> ") {
		return Condition{Field: field, Op: OpExists, Value: false}, nil
	}
	if field, ok := strings.CutSuffix(expr, " "+OpExists); ok {
		return Condition{Field: strings.TrimSpace(field), Op: OpExists, Value: true}, nil
	}

	for _, op := range worded {
		if field, value, ok := strings.Cut(expr, " "+op+" "); ok {
			return build(field, op, value)
		}
	}

	// The leftmost operator wins; at equal positions the longer one does.
	at, found := -1, ""
	for _, op := range symbolic {
		if i := strings.Index(expr, op); i > 0 && (at < 0 || i < at) {
			at, found = i, op
		}
	}
	if at > 0 {
		return build(expr[:at], found, expr[at+len(found):])
	}

	return Condition{}, fmt.Errorf("%w in %q", ErrUnknownOperator, expr)
}

func build(field, op, value string) (Condition, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return Condition{}, fmt.Errorf("missing field in condition")
	}
	return Condition{Field: field, Op: op, Value: strings.TrimSpace(value)}, nil
}

// ParseOrder reads "field", "field asc", "field desc" or "-field".
func ParseOrder(expr string) (Order, error) {
	expr = strings.TrimSpace(expr)
	if field, ok := strings.CutPrefix(expr, "-"); ok {
		return Order{Field: field, Desc: true}, nil
	}
	field, dir, _ := strings.Cut(expr, " ")
	if field == "" {
		return Order{}, fmt.Errorf("empty order")
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc", "ascending":
		return Order{Field: field}, nil
	case "desc", "descending":
		return Order{Field: field, Desc: true}, nil
	default:
		return Order{}, fmt.Errorf("unknown direction %q", dir)
	}
}
