// Package refgen produces the human-readable identifiers handed to
// customers: payment references and kiosk PINs.
package refgen

import (
	"context"
	crand "crypto/rand"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
)

const (
	PrefixPayment = "PAY"
	PrefixWalkIn  = "WLK"

	PINLength    = 6
	suffixDigits = 6

	// MaxAttempts bounds every collision retry loop.
	MaxAttempts = 10
)

// ErrExhausted is a conflict so callers can retry the request.
var ErrExhausted = apperr.New(apperr.ErrConflict, "unable to generate a unique value, try again")

// ExistsFunc reports whether candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Digits returns n random decimal digits. Not suitable for secrets.
func Digits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// SecureDigits is Digits drawn from crypto/rand.
func SecureDigits(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := crand.Read(buf); err != nil {
			return "", err
		}
		for _, c := range buf {
			// 250 is the largest multiple of 10 below 256.
			if c < 250 && len(out) < n {
				out = append(out, '0'+c%10)
			}
		}
	}
	return string(out), nil
}

func FormatReference(prefix string, day time.Time, suffix string) string {
	return prefix + "-" + day.Format("20060102") + "-" + suffix
}

// Unique draws candidates until exists reports one free, giving up with
// ErrExhausted after MaxAttempts.
func Unique(ctx context.Context, next func() (string, error), exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate, err := next()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

// Reference yields PREFIX-YYYYMMDD-###### for the given day.
func Reference(ctx context.Context, prefix string, now time.Time, exists ExistsFunc) (string, error) {
	return Unique(ctx, func() (string, error) {
		return FormatReference(prefix, now, Digits(suffixDigits)), nil
	}, exists)
}

// PIN draws kiosk PINs from crypto/rand.
func PIN(ctx context.Context, exists ExistsFunc) (string, error) {
	return Unique(ctx, func() (string, error) { return SecureDigits(PINLength) }, exists)
}

// ValidPIN reports whether s is exactly six ASCII digits.
func ValidPIN(s string) bool {
	if len(s) != PINLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
