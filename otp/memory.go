package otp

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryLedger is a process-local Ledger. Codes do not survive a restart
// and are not shared between instances; use RedisLedger for that.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (l *MemoryLedger) Issue(_ context.Context, mobile, code string, ttl time.Duration) (time.Time, error) {
	expiresAt := l.now().Add(ttl)

	l.mu.Lock()
	l.entries[mobile] = entry{code: code, expiresAt: expiresAt}
	l.mu.Unlock()

	return expiresAt, nil
}

func (l *MemoryLedger) Verify(_ context.Context, mobile, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[mobile]
	if !ok {
		return ErrNotFound
	}
	if l.now().After(e.expiresAt) {
		delete(l.entries, mobile)
		return ErrExpired
	}
	if e.code != code {
		return ErrMismatch
	}
	delete(l.entries, mobile)
	return nil
}

// Sweep drops every entry past its expiry.
func (l *MemoryLedger) Sweep(_ context.Context) (int, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for mobile, e := range l.entries {
		if now.After(e.expiresAt) {
			delete(l.entries, mobile)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of pending entries.
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Run sweeps expired entries every interval until ctx is cancelled.
func (l *MemoryLedger) Run(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, _ := l.Sweep(ctx); n > 0 {
				logger.Debug("swept expired OTPs", zap.Int("removed", n))
			}
		}
	}
}
