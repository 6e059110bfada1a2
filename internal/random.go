package internal

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin  = 1000
	otpSpan = 9000 // inclusive range 1000-9999
)

// NewOTPCode draws a uniformly random 4-digit code in [1000, 9999],
// both bounds inclusive.
func NewOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(otpMin+n.Int64(), 10), nil
}
