package service

import (
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/events"
)

// options holds the settings shared by the services' constructors.
type options struct {
	now     func() time.Time
	emitter events.Emitter
}

// Option configures a service.
type Option func(*options)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEmitter sets where pipeline events are published.
func WithEmitter(emitter events.Emitter) Option {
	return func(o *options) {
		if emitter != nil {
			o.emitter = emitter
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:     func() time.Time { return time.Now().UTC() },
		emitter: events.NopEmitter{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
