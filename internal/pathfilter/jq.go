package pathfilter

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
)

type jqFilter struct {
	code *gojq.Code
}

func compileJQ(expr string) (Filter, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, err
	}
	return &jqFilter{code: code}, nil
}

// Apply runs the program once with the item array as input. Emitted arrays
// are flattened one level so "map(select(...))" and ".[] | select(...)" agree.
func (f *jqFilter) Apply(ctx context.Context, items []any) ([]any, error) {
	var out []any
	iter := f.code.RunWithContext(ctx, items)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("evaluate: %w", err)
		}
		if arr, isArr := v.([]any); isArr {
			out = append(out, arr...)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
