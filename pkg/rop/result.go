package rop

import (
	"time"

	"github.com/google/uuid"
)

// Result carries the output of one unit of work, or the reason it has none.
type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	isSuccess bool
	isCancel  bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		isSuccess: true,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isCancel:  true,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// From moves an unsuccessful result across a type change, keeping its id,
// error and cancel flag.
func From[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		err:       from.err,
		isSuccess: false,
		isCancel:  from.isCancel,
		createdAt: from.createdAt,
		id:        from.id,
	}
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

// IsCancel reports a failure caused by context cancellation.
func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

// CreatedAt is the UTC time the result was made. From carries it over.
func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

// Id identifies the unit of work across stages.
func (r Result[T]) Id() uuid.UUID {
	return r.id
}
