package adapter

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/finalize/registry"
)

// Finalizable is anything with a one-shot, infallible Finalize, such as an
// Adapter.
type Finalizable interface {
	Finalize(ctx context.Context)
}

// FinalizeAll finalizes items concurrently, at most limit at a time. A limit
// of zero or less means no limit. Items are independent and run in no
// particular order. If ctx ends, items not yet started are skipped and
// ctx.Err() is returned.
//
// If ctx carries registry.Locals, each item runs with its own copy of them,
// taken when the item is scheduled. Handlers a finalizer installs locally are
// not visible to the caller or to other items.
func FinalizeAll(ctx context.Context, limit int, items ...Finalizable) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	locals := registry.LocalsFrom(ctx)
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		itemCtx := ctx
		if locals != nil {
			itemCtx = registry.ContextWithLocals(ctx, locals.Clone())
		}
		g.Go(func() error {
			item.Finalize(itemCtx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
