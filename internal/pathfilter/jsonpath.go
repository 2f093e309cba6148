package pathfilter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// itemsKey is the property under which items are exposed to JSONPath, so that
// a filter written against the array ("$[?(...)]") selects items.
const itemsKey = "items"

type jsonPathFilter struct {
	expr jp.Expr
}

func compileJSONPath(expr string) (Filter, error) {
	body := strings.TrimPrefix(expr, "$")
	scoped := "$." + itemsKey + body
	x, err := parseJSONPath(scoped)
	if err != nil {
		return nil, unscopeError(err, expr, len(scoped)-len(expr))
	}
	return &jsonPathFilter{expr: x}, nil
}

// parsePosition matches ojg's "<msg> at <pos> in <expr>" parse errors.
var parsePosition = regexp.MustCompile(`^(.*) at (\d+) in .*$`)

// unscopeError reports a parse error against the caller's expression,
// shifting the position back by the length of the items scope.
func unscopeError(err error, expr string, shift int) error {
	m := parsePosition.FindStringSubmatch(err.Error())
	if m == nil {
		return errors.New(strings.ReplaceAll(err.Error(), "$."+itemsKey, "$"))
	}
	pos, _ := strconv.Atoi(m[2])
	pos = max(pos-shift, 1)
	return fmt.Errorf("%s at %d in %s", m[1], pos, expr)
}

func parseJSONPath(s string) (x jp.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return jp.ParseString(s)
}

func (f *jsonPathFilter) Apply(ctx context.Context, items []any) (out []any, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluate: %v", r)
		}
	}()
	return f.expr.Get(map[string]any{itemsKey: items}), nil
}
