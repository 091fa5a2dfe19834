package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// keySeparator never occurs in a canonical decimal field, which keeps keys injective.
const keySeparator = "-"

// CacheKey addresses one operator cache entry. It doubles as a path segment.
type CacheKey string

// DeriveKey maps a geometry to its canonical cache key, e.g. "64-32-1".
func DeriveKey(g Geometry) CacheKey {
	var b strings.Builder
	b.WriteString(strconv.Itoa(g.Width))
	b.WriteString(keySeparator)
	b.WriteString(strconv.Itoa(g.NumProjections))
	b.WriteString(keySeparator)
	b.WriteString(strconv.Itoa(g.NumSlices))
	return CacheKey(b.String())
}

// String returns the key as a plain string.
func (k CacheKey) String() string {
	return string(k)
}

// ParseKey is the inverse of DeriveKey.
// It rejects anything DeriveKey would not have produced (signs, leading zeros, extra fields).
func ParseKey(s string) (Geometry, error) {
	parts := strings.Split(s, keySeparator)
	if len(parts) != 3 {
		return Geometry{}, malformedKey(s)
	}

	dims := make([]int, len(parts))
	for i, part := range parts {
		if !isCanonicalDecimal(part) {
			return Geometry{}, malformedKey(s)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Geometry{}, malformedKey(s)
		}
		dims[i] = n
	}

	g, err := NewGeometry(dims[0], dims[1], dims[2])
	if err != nil {
		return Geometry{}, malformedKey(s)
	}
	return g, nil
}

func malformedKey(s string) error {
	return zerr.With(zerr.Wrap(ErrInvalidKey, "malformed cache key"), "key", s)
}

func isCanonicalDecimal(s string) bool {
	if s == "" || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
