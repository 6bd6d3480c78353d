// Package otp keeps short-lived one-time login codes keyed by mobile number.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"
)

const (
	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 10 * time.Minute
	// SweepInterval is how often expired codes are purged from in-process ledgers.
	SweepInterval = time.Minute

	minCode = 100000
	maxCode = 999999
)

var (
	ErrNotFound = errors.New("otp: not found")
	ErrExpired  = errors.New("otp: expired")
	ErrMismatch = errors.New("otp: code mismatch")
)

// Ledger stores at most one pending code per mobile number.
// Issue overwrites any pending code; Verify consumes the code on success
// and leaves it in place on a mismatch.
type Ledger interface {
	Issue(ctx context.Context, mobile, code string, ttl time.Duration) (time.Time, error)
	Verify(ctx context.Context, mobile, code string) error
	Sweep(ctx context.Context) (int, error)
}

// GenerateCode returns a uniformly random six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+minCode, 10), nil
}
