package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/lantern/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// DefaultPIIPatterns match the identity fields of a journey snapshot.
var DefaultPIIPatterns = []string{`^name$`, `^email$`}

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a read-side redaction middleware: Load masks the
// values of object keys matching any pattern, at any depth. Null values stay
// null. Writes pass through untouched, so the wrapped store is meant for
// inspection, never for a journey store that writes back what it reads.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PII pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, key string, data []byte) error {
	return m.next.Save(ctx, key, data)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := m.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot for redaction: %w", err)
	}
	mask(doc, m.patterns)
	return json.Marshal(doc)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func mask(v any, patterns []*regexp.Regexp) {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if child != nil && matchesAny(k, patterns) {
				node[k] = Mask
				continue
			}
			mask(child, patterns)
		}
	case []any:
		for _, child := range node {
			mask(child, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
