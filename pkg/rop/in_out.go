package rop

import "context"

// ToChanManyResults streams values as successful results. The channel closes
// after the last value or when ctx is done.
func ToChanManyResults[T any](ctx context.Context, values []T) <-chan Result[T] {
	in := make(chan Result[T])

	go func() {
		defer close(in)

		for _, v := range values {
			select {
			case in <- Success(v):
			case <-ctx.Done():
				return
			}
		}
	}()

	return in
}

// FromChanMany drains out until it closes. It keeps successful values and
// returns the error of the first unsuccessful result.
func FromChanMany[T any](out <-chan Result[T]) ([]T, error) {
	res := make([]T, 0)
	var firstErr error
	for r := range out {
		if r.IsSuccess() {
			res = append(res, r.Result())
			continue
		}
		if firstErr == nil {
			firstErr = r.Err()
		}
	}
	return res, firstErr
}
