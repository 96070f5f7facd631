package invoices

import (
	"strconv"
	"strings"
)

// ParseSuffix extracts the running number of invoiceNo. ok is false when
// the remainder after prefix is empty or not a non-negative integer; the
// value is then 0.
func ParseSuffix(prefix, invoiceNo string) (n int64, ok bool) {
	rest := strings.TrimPrefix(invoiceNo, prefix)
	if rest == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// NextAfter derives the invoice number that follows last. An empty last
// starts the sequence at prefix+"1". There is no zero padding.
func NextAfter(prefix, last string) string {
	if last == "" {
		return Format(prefix, 1)
	}
	n, _ := ParseSuffix(prefix, last)
	return Format(prefix, n+1)
}

func Format(prefix string, n int64) string {
	return prefix + strconv.FormatInt(n, 10)
}
