package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed keys.
// Version suffix enables future algorithm migration.
const (
	DomainQuery = "gridq/query/v" + SpecVersion
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalQuery returns the canonical object form of a QuerySpec.
// Filters and sorts keep their order: both are significant.
func CanonicalQuery(q QuerySpec) map[string]any {
	filters := make([]any, len(q.Filters))
	for i, f := range q.Filters {
		filters[i] = map[string]any{
			"field":            f.Field,
			"kind":             f.Kind.String(),
			"operator":         string(f.Operator),
			"value":            f.Value,
			"case_insensitive": f.CaseInsensitive,
		}
	}
	sorts := make([]any, len(q.Sorts))
	for i, s := range q.Sorts {
		sorts[i] = map[string]any{
			"field":      s.Field,
			"descending": s.Descending,
		}
	}
	return map[string]any{
		"filters": filters,
		"sorts":   sorts,
		"offset":  q.Offset,
		"limit":   q.Limit,
	}
}

// QueryKey computes a content-addressed key for a QuerySpec. Two specs that
// would return the same window of the same data share a key.
func QueryKey(q QuerySpec) (string, error) {
	canonical, err := MarshalCanonical(CanonicalQuery(q))
	if err != nil {
		return "", fmt.Errorf("QueryKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}
