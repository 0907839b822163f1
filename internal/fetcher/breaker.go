package fetcher

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrHostUnavailable is returned when a host's circuit is open and requests
// to it are being rejected without hitting the network.
var ErrHostUnavailable = eris.New("fetcher: host circuit open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// hostBreakers tracks a circuit breaker per feed host. A host that fails
// threshold times in a row is cut off for the cooldown period; after that a
// single probe request decides whether it reopens or recovers. A flaky
// provider gets skipped quickly instead of burning the batch's retry budget.
type hostBreakers struct {
	threshold int
	cooldown  time.Duration

	mu    sync.Mutex
	hosts map[string]*hostState

	now func() time.Time
}

type hostState struct {
	state       breakerState
	failures    int
	lastFailure time.Time
}

func newHostBreakers(threshold int, cooldown time.Duration) *hostBreakers {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &hostBreakers{
		threshold: threshold,
		cooldown:  cooldown,
		hosts:     make(map[string]*hostState),
		now:       time.Now,
	}
}

func (b *hostBreakers) get(host string) *hostState {
	h, ok := b.hosts[host]
	if !ok {
		h = &hostState{}
		b.hosts[host] = h
	}
	return h
}

// allow reports whether a request to the host may proceed. An open circuit
// past its cooldown moves to half-open and lets one probe through.
func (b *hostBreakers) allow(host string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.get(host)
	switch h.state {
	case stateOpen:
		if b.now().Sub(h.lastFailure) < b.cooldown {
			return eris.Wrapf(ErrHostUnavailable, "%s", host)
		}
		h.state = stateHalfOpen
		zap.L().Info("fetcher: probing host after cooldown", zap.String("host", host))
		return nil
	default:
		return nil
	}
}

// record feeds a request outcome back into the host's breaker.
func (b *hostBreakers) record(host string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.get(host)
	if ok {
		if h.state != stateClosed {
			zap.L().Info("fetcher: host recovered", zap.String("host", host))
		}
		h.state = stateClosed
		h.failures = 0
		return
	}

	h.failures++
	h.lastFailure = b.now()
	if h.state == stateHalfOpen || h.failures >= b.threshold {
		if h.state != stateOpen {
			zap.L().Warn("fetcher: host circuit opened",
				zap.String("host", host),
				zap.Int("failures", h.failures),
			)
		}
		h.state = stateOpen
	}
}

// stateOf returns the host's current breaker state.
func (b *hostBreakers) stateOf(host string) breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.get(host).state
}
