package registry

import (
	"context"

	"github.com/aretw0/tradecoin/pkg/domain"
)

// Command builds a mutating operation whose arguments decode into A.
func Command[A any](name, description string, fn func(ctx context.Context, caller domain.Address, args A) (any, error)) Operation {
	return bind(name, description, true, fn)
}

// Query builds a read-only operation whose arguments decode into A.
func Query[A any](name, description string, fn func(ctx context.Context, caller domain.Address, args A) (any, error)) Operation {
	return bind(name, description, false, fn)
}

func bind[A any](name, description string, mutating bool, fn func(ctx context.Context, caller domain.Address, args A) (any, error)) Operation {
	var zero A
	return Operation{
		Name:        name,
		Description: description,
		Mutating:    mutating,
		Params:      paramsOf(zero),
		Handler: func(ctx context.Context, caller domain.Address, raw map[string]any) (any, error) {
			var args A
			if err := Decode(raw, &args); err != nil {
				return nil, err
			}
			return fn(ctx, caller, args)
		},
	}
}
