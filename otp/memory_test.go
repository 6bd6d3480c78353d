package otp

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLedger() (*MemoryLedger, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
	l := NewMemoryLedger()
	l.now = clock.Now
	return l, clock
}

func TestMemoryLedger_SingleUse(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger()

	_, err := l.Issue(ctx, "9876543210", "123456", DefaultTTL)
	require.NoError(t, err)

	require.NoError(t, l.Verify(ctx, "9876543210", "123456"))
	assert.ErrorIs(t, l.Verify(ctx, "9876543210", "123456"), ErrNotFound)
}

func TestMemoryLedger_MismatchKeepsEntry(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger()

	_, _ = l.Issue(ctx, "9876543210", "123456", DefaultTTL)

	assert.ErrorIs(t, l.Verify(ctx, "9876543210", "654321"), ErrMismatch)
	assert.Equal(t, 1, l.Len())
	assert.NoError(t, l.Verify(ctx, "9876543210", "123456"))
}

func TestMemoryLedger_Expiry(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLedger()

	expiresAt, err := l.Issue(ctx, "9876543210", "123456", DefaultTTL)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(10*time.Minute), expiresAt)

	clock.Advance(10*time.Minute + time.Second)

	assert.ErrorIs(t, l.Verify(ctx, "9876543210", "123456"), ErrExpired)
	assert.Equal(t, 0, l.Len())
	assert.ErrorIs(t, l.Verify(ctx, "9876543210", "123456"), ErrNotFound)
}

func TestMemoryLedger_ValidAtExactExpiry(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLedger()

	_, _ = l.Issue(ctx, "9876543210", "123456", DefaultTTL)
	clock.Advance(DefaultTTL)

	assert.NoError(t, l.Verify(ctx, "9876543210", "123456"))
}

func TestMemoryLedger_ReissueInvalidatesPrevious(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger()

	_, _ = l.Issue(ctx, "9876543210", "111111", DefaultTTL)
	_, _ = l.Issue(ctx, "9876543210", "222222", DefaultTTL)

	assert.ErrorIs(t, l.Verify(ctx, "9876543210", "111111"), ErrMismatch)
	assert.NoError(t, l.Verify(ctx, "9876543210", "222222"))
}

func TestMemoryLedger_Sweep(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLedger()

	_, _ = l.Issue(ctx, "1111111111", "111111", time.Minute)
	_, _ = l.Issue(ctx, "2222222222", "222222", DefaultTTL)

	clock.Advance(2 * time.Minute)

	removed, err := l.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Len())
	assert.ErrorIs(t, l.Verify(ctx, "1111111111", "111111"), ErrNotFound)
}

func TestMemoryLedger_RunStopsOnCancel(t *testing.T) {
	l := NewMemoryLedger()
	_, _ = l.Issue(context.Background(), "9876543210", "123456", -time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, 10*time.Millisecond, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
