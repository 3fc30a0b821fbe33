package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const bookingCodePrefix = "KOS"

// NewBookingCode generates a human-readable booking code:
// prefix + base36 timestamp + 4-char random suffix, e.g. KOS-LX2K91A-7F3Q.
// Collisions are improbable but not impossible; the bookings table carries a
// unique index on code and callers retry once on a duplicate-key insert.
func NewBookingCode() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return fmt.Sprintf("%s-%s-%s", bookingCodePrefix, ts, randomSuffix(4))
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
