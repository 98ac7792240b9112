package cmd

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultProbeInterval    = 500 * time.Millisecond
	defaultProbeDialTimeout = time.Second
)

// probeOptions controls the readiness probe. A zero Timeout waits forever.
type probeOptions struct {
	Interval    time.Duration
	Timeout     time.Duration
	DialTimeout time.Duration
}

// waitForPort dials ep until a TCP connection succeeds, sleeping Interval
// between attempts, and returns the number of attempts made. It gives up
// with a ReadinessTimeoutError once Timeout elapses, with a LaunchError when
// serverExited fires first, and with ErrInterrupted when ctx is cancelled.
// A nil serverExited is never selected.
func waitForPort(ctx context.Context, ep endpoint, opts probeOptions, serverExited <-chan struct{}) (int, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultProbeDialTimeout
	}

	probeCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	d := net.Dialer{Timeout: dialTimeout}
	for attempt := 1; ; attempt++ {
		conn, err := d.DialContext(probeCtx, "tcp", ep.Addr())
		if err == nil {
			_ = conn.Close()
			log.Debug().Str("endpoint", ep.Addr()).Int("attempt", attempt).Msg("port accepted connection")
			return attempt, nil
		}
		log.Debug().Err(err).Str("endpoint", ep.Addr()).Int("attempt", attempt).Msg("port not ready")

		wait := time.NewTimer(interval)
		select {
		case <-probeCtx.Done():
			wait.Stop()
			if ctx.Err() != nil {
				return attempt, ErrInterrupted
			}
			return attempt, &ReadinessTimeoutError{Endpoint: ep, Attempts: attempt, Waited: time.Since(start)}
		case <-serverExited:
			wait.Stop()
			return attempt, &LaunchError{Err: errServerExited}
		case <-wait.C:
		}
	}
}
