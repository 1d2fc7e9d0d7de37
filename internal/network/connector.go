package network

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/door-sentry/internal/logger"
)

// ConnectionState is the link state as seen by the Connector.
type ConnectionState int

const (
	// Disconnected is the initial state and the state after a bounded wait expires.
	Disconnected ConnectionState = iota
	// Connecting means a Connect call is in progress.
	Connecting
	// Connected means the link reported itself up.
	Connected
)

// String implements fmt.Stringer.
func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Link is the host network stack capability.
type Link interface {
	// Join starts association with the network.
	Join(ctx context.Context, ssid, secret string) error
	// Connected reports whether the link is up.
	Connected(ctx context.Context) (bool, error)
}

const (
	// DefaultRetryInterval is the fixed delay between connection checks.
	DefaultRetryInterval = 500 * time.Millisecond
)

// ErrConnectTimeout is returned when a bounded Connect gives up.
var ErrConnectTimeout = errors.New("network connect timed out")

// Connector owns the ConnectionState and drives a Link until it is up.
type Connector struct {
	// link is the network stack adapter.
	link Link
	// retryInterval is the fixed delay between attempts.
	retryInterval time.Duration
	// maxWait bounds Connect; zero waits forever.
	maxWait time.Duration
	// onAttempt is called for every connection check.
	onAttempt func()

	// mu protects state.
	mu sync.RWMutex
	// state is the last observed connection state.
	state ConnectionState
}

// Option configures a Connector.
type Option func(*Connector)

// WithRetryInterval overrides DefaultRetryInterval.
func WithRetryInterval(interval time.Duration) Option {
	return func(c *Connector) {
		if interval > 0 {
			c.retryInterval = interval
		}
	}
}

// WithMaxWait bounds how long Connect blocks. Zero or less keeps it unbounded.
func WithMaxWait(maxWait time.Duration) Option {
	return func(c *Connector) {
		if maxWait > 0 {
			c.maxWait = maxWait
		}
	}
}

// WithAttemptObserver registers a callback run for every connection check.
func WithAttemptObserver(fn func()) Option {
	return func(c *Connector) {
		c.onAttempt = fn
	}
}

// NewConnector creates a Connector for link.
func NewConnector(link Link, opts ...Option) *Connector {
	c := &Connector{
		link:          link,
		retryInterval: DefaultRetryInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns the current connection state.
func (c *Connector) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Connect blocks until the link is up, checking every retry interval.
// A failed Join is repeated on the next tick. It returns ErrConnectTimeout
// when a max wait is configured and exceeded, or ctx.Err() on cancellation.
func (c *Connector) Connect(ctx context.Context, ssid, secret string) error {
	ctx = logger.WithKV(logger.WithName(ctx, "network"), "ssid", ssid)

	c.setState(Connecting)
	logger.Info(ctx, "Connecting to wireless network")

	var deadline <-chan time.Time

	if c.maxWait > 0 {
		timer := time.NewTimer(c.maxWait)
		defer timer.Stop()

		deadline = timer.C
	}

	ticker := time.NewTicker(c.retryInterval)
	defer ticker.Stop()

	joined := false

	for attempt := 1; ; attempt++ {
		if !joined {
			if err := c.link.Join(ctx, ssid, secret); err != nil {
				logger.WarnKV(ctx, "Join failed, retrying", "attempt", attempt, "error", err)
			} else {
				joined = true
			}
		}

		if c.onAttempt != nil {
			c.onAttempt()
		}

		if joined {
			up, err := c.link.Connected(ctx)
			if err != nil {
				logger.WarnKV(ctx, "Link status query failed", "attempt", attempt, "error", err)
			}

			if up {
				c.setState(Connected)
				logger.InfoKV(ctx, "Connected to wireless network", "attempts", attempt)

				return nil
			}
		}

		logger.DebugKV(ctx, "Still connecting", "attempt", attempt)

		select {
		case <-ctx.Done():
			c.setState(Disconnected)
			return ctx.Err()
		case <-deadline:
			c.setState(Disconnected)
			logger.ErrorKV(ctx, "Giving up on wireless network", "attempts", attempt, "max_wait", c.maxWait.String())

			return ErrConnectTimeout
		case <-ticker.C:
		}
	}
}

// setState records a new connection state.
func (c *Connector) setState(s ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = s
}
