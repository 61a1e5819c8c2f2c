// Package rut validates and formats Chilean RUT identifiers.
package rut

import (
	"fmt"
	"strconv"
	"strings"
)

// Normalize strips dots and hyphens from a raw RUT, verifies the check
// digit and returns the canonical "body-dv" form without leading zeros.
func Normalize(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("rut is empty")
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= '0' && r <= '9') || r == 'K' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) < 2 {
		return "", fmt.Errorf("invalid rut %q", raw)
	}

	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]
	n, err := strconv.Atoi(body)
	if err != nil {
		return "", fmt.Errorf("invalid rut %q", raw)
	}

	if checkDigit(n) != dv {
		return "", fmt.Errorf("invalid check digit for rut %q", raw)
	}

	return fmt.Sprintf("%d-%s", n, dv), nil
}

// Format renders a normalized RUT with thousands separators, e.g.
// "12345678-5" -> "12.345.678-5".
func Format(normalized string) string {
	parts := strings.SplitN(normalized, "-", 2)
	if len(parts) != 2 {
		return normalized
	}

	body, dv := parts[0], parts[1]
	var groups []string
	for len(body) > 3 {
		groups = append([]string{body[len(body)-3:]}, groups...)
		body = body[:len(body)-3]
	}
	groups = append([]string{body}, groups...)

	return strings.Join(groups, ".") + "-" + dv
}

// checkDigit computes the modulo-11 check digit for a RUT body.
func checkDigit(body int) string {
	s, m := 1, 0
	for body > 0 {
		s = (s + body%10*(9-m%6)) % 11
		body /= 10
		m++
	}
	if s == 0 {
		return "K"
	}
	return strconv.Itoa(s - 1)
}
