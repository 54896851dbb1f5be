package orchestrator

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"stackup/internal/descriptor"
	"stackup/pkg/logging"
)

// CheckFunc probes a service once. A nil return means the service is ready.
type CheckFunc func(ctx context.Context) error

// HealthGate polls a readiness check until it passes or the attempt budget is
// exhausted. The first probe fires immediately; subsequent probes back off
// exponentially up to MaxBackoff.
type HealthGate struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultHealthGate returns the gate used when a run does not override the
// polling parameters.
func DefaultHealthGate() HealthGate {
	return HealthGate{
		MaxAttempts:    30,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// AwaitReady blocks until check passes, the attempt budget runs out, or ctx is
// cancelled. A nil check means the service has no readiness probe and is
// considered ready at once.
func (g HealthGate) AwaitReady(ctx context.Context, name string, check CheckFunc) error {
	if check == nil {
		return nil
	}

	backoff := g.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= g.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = check(ctx)
		if lastErr == nil {
			logging.Debug("Health", "%s ready after %d attempt(s)", name, attempt)
			return nil
		}
		logging.Debug("Health", "%s not ready (attempt %d/%d): %v", name, attempt, g.MaxAttempts, lastErr)

		if attempt == g.MaxAttempts {
			break
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff *= 2
		if backoff > g.MaxBackoff {
			backoff = g.MaxBackoff
		}
	}

	return fmt.Errorf("readiness check for %s did not pass after %d attempts: %w", name, g.MaxAttempts, lastErr)
}

// TCPCheck reports readiness when a TCP connection to the port succeeds on
// localhost.
func TCPCheck(port int) CheckFunc {
	address := net.JoinHostPort("localhost", fmt.Sprintf("%d", port))
	return func(ctx context.Context) error {
		dialer := net.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return fmt.Errorf("tcp connect to %s: %w", address, err)
		}
		conn.Close()
		return nil
	}
}

// HTTPCheck reports readiness when a GET to the URL returns a 2xx status.
func HTTPCheck(url string) CheckFunc {
	client := &http.Client{Timeout: 2 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building request for %s: %w", url, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("http probe %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("http probe %s returned status %d", url, resp.StatusCode)
		}
		return nil
	}
}

// CheckFor builds the readiness probe for a descriptor. One-shot services and
// services without a usable check get a nil probe: one-shot readiness is
// observed through the exit code, and unchecked services are ready as soon as
// their process is up.
func CheckFor(desc descriptor.ServiceDescriptor) CheckFunc {
	check := desc.EffectiveReadyCheck()
	switch check.Type {
	case descriptor.ReadyCheckTCP:
		return TCPCheck(check.Port)
	case descriptor.ReadyCheckHTTP:
		return HTTPCheck(check.URL)
	default:
		return nil
	}
}
