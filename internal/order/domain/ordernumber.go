package domain

import (
	"crypto/rand"
	"time"
)

// Crockford-style alphabet: no I, L, O or U so numbers survive being read
// out over the phone. 32 symbols keep the byte mapping unbiased.
const orderNumberAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const orderNumberSuffixLen = 8

// OrderNumberFunc produces a candidate order number. Candidates are likely
// but not guaranteed to be unique; the orders table has the final say.
type OrderNumberFunc func(now time.Time) string

// NewOrderNumber returns ORD-YYMMDD-XXXXXXXX.
func NewOrderNumber(now time.Time) string {
	raw := make([]byte, orderNumberSuffixLen)
	_, _ = rand.Read(raw)

	buf := make([]byte, 0, 4+6+1+orderNumberSuffixLen)
	buf = append(buf, "ORD-"...)
	buf = now.UTC().AppendFormat(buf, "060102")
	buf = append(buf, '-')
	for _, b := range raw {
		buf = append(buf, orderNumberAlphabet[b&31])
	}
	return string(buf)
}
