package coverpick

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// outcome is the settled result of one branch.
type outcome[T any] struct {
	Value T
	Err   error
}

// settleAll runs fn for every index in parallel and waits for all of them.
// Branches never cancel each other: a failure or panic is recorded in that
// branch's outcome only. Outcomes keep input order.
func settleAll[T any](ctx context.Context, n int, onPanic func(string, any), fn func(ctx context.Context, i int) (T, error)) []outcome[T] {
	out := make([]outcome[T], n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					if onPanic != nil {
						onPanic("settleAll", r)
					}
					out[i].Err = fmt.Errorf("coverpick: panic: %v", r)
				}
			}()
			v, err := fn(ctx, i)
			out[i] = outcome[T]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
