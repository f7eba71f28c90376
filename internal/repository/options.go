// Package repository exposes create, read, update and delete operations over
// the invoice and customer stores. It is the only writer of live store files.
package repository

import "time"

type options struct {
	now func() time.Time
}

// Option configures a repository.
type Option func(*options)

// WithClock replaces the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// touch returns the timestamp for a modification of a record created at
// created. The result is never earlier than created.
func touch(now func() time.Time, created time.Time) time.Time {
	t := now()
	if t.Before(created) {
		return created
	}
	return t
}
