package rop

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Engine turns one input result into one output result.
type Engine[In, Out any] func(ctx context.Context, input Result[In]) Result[Out]

// Try lifts a function returning (Out, error) into an Engine. Unsuccessful
// inputs pass through; a context error becomes a cancel, any other error a
// failure.
func Try[In, Out any](onTryExecute func(ctx context.Context, r In) (Out, error)) Engine[In, Out] {
	return func(ctx context.Context, input Result[In]) Result[Out] {
		if !input.IsSuccess() {
			return From[In, Out](input)
		}
		out, err := onTryExecute(ctx, input.Result())
		if err != nil {
			if IsCancellationError(err) {
				return Cancel[Out](err)
			}
			return Fail[Out](err)
		}
		return Success(out)
	}
}

// Locomotive pulls inputs until inputCh closes or ctx is done, runs engine on
// each and forwards the output. It stops at the first unsuccessful output and
// returns its error, so an errgroup can stop the sibling locomotives.
func Locomotive[In, Out any](ctx context.Context, inputCh <-chan Result[In], outCh chan<- Result[Out],
	engine Engine[In, Out], onSuccess func(ctx context.Context, out Result[Out])) error {

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-inputCh:
			if !ok {
				return nil
			}

			pr := engine(ctx, in)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case outCh <- pr:
			}

			if !pr.IsSuccess() {
				return pr.Err()
			}
			if onSuccess != nil {
				onSuccess(ctx, pr)
			}
		}
	}
}

// Turnout runs engine over inputCh on the given number of lines. The returned
// channel closes once every line has stopped; wait then reports the first
// error any line returned.
func Turnout[In, Out any](ctx context.Context, inputCh <-chan Result[In], engine Engine[In, Out],
	lines int, onSuccess func(ctx context.Context, out Result[Out])) (out <-chan Result[Out], wait func() error) {

	ch := make(chan Result[Out])
	g, gctx := errgroup.WithContext(ctx)

	for range max(lines, 1) {
		g.Go(func() error {
			return Locomotive(gctx, inputCh, ch, engine, onSuccess)
		})
	}

	go func() {
		_ = g.Wait()
		close(ch)
	}()

	return ch, g.Wait
}

// Stage fans values out over lines workers and blocks until every worker has
// reported. It returns the successful outputs, in completion order, or the
// first error; an error cancels the remaining work.
func Stage[In, Out any](ctx context.Context, values []In, engine Engine[In, Out], lines int,
	onSuccess func(ctx context.Context, out Result[Out])) ([]Out, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out, wait := Turnout(stageCtx, ToChanManyResults(stageCtx, values), engine, lines, onSuccess)
	outs, collectErr := FromChanMany(out)
	if err := wait(); err != nil {
		return nil, err
	}
	if collectErr != nil {
		return nil, collectErr
	}
	return outs, nil
}
