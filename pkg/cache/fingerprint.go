// Package cache provides short-lived response caching for query results,
// keyed by a fingerprint of the connection, query text and shaping
// parameters.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/zenitsu0509/Employee-NLQ/pkg/datasource"
)

// Fingerprint derives a stable cache key. The query text is lowercased
// and whitespace-collapsed so trivially reworded repeats of the same
// question hit the same entry; shaping parameters are canonicalized so
// map ordering never changes the key.
func Fingerprint(identity datasource.Identity, query string, params map[string]string) string {
	h := sha256.New()
	h.Write([]byte(identity))
	h.Write([]byte{0})
	h.Write([]byte(normalizeQuery(query)))
	h.Write([]byte{0})
	h.Write([]byte(datasource.CanonicalParams(params)))
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
