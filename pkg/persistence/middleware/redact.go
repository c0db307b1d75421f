package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// RedactedValue replaces the value of redacted string variables.
const RedactedValue = "***"

type redactMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks string variables whose
// key matches any pattern (e.g. free-text answers typed by the player).
// Masked values are lost: loading returns RedactedValue.
func NewRedactMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &redactMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, profile string, data *domain.SaveData) error {
	// Mask a copy; the caller's data stays untouched.
	cloned := data.Clone()
	for i, e := range cloned.Globals.Strings {
		for _, p := range m.patterns {
			if p.MatchString(e.Key) {
				cloned.Globals.Strings[i].Value = RedactedValue
				break
			}
		}
	}
	return m.next.Save(ctx, profile, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, profile string) (*domain.SaveData, error) {
	return m.next.Load(ctx, profile)
}

func (m *redactMiddleware) Delete(ctx context.Context, profile string) error {
	return m.next.Delete(ctx, profile)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
