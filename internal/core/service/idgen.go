package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

// idSource is what the services need from IDGenerator.
type idSource interface {
	Generate(ctx context.Context, length int, alphabet domain.Alphabet) (string, error)
}

// IDGenerator issues identifiers that are unique across every entity. Each
// candidate is reserved in the shared registry before it is handed out.
type IDGenerator struct {
	registry ports.IDRegistry
	random   io.Reader
	now      func() time.Time
}

func NewIDGenerator(registry ports.IDRegistry) *IDGenerator {
	return &IDGenerator{registry: registry, random: rand.Reader, now: time.Now}
}

// Generate draws candidates until the registry accepts one.
func (g *IDGenerator) Generate(ctx context.Context, length int, alphabet domain.Alphabet) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("identifier length must be positive, got %d", length)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate, err := g.draw(length, alphabet)
		if err != nil {
			return "", fmt.Errorf("draw identifier: %w", err)
		}

		ok, err := g.registry.Reserve(ctx, candidate, g.now().UTC())
		if err != nil {
			return "", fmt.Errorf("reserve identifier: %w", err)
		}
		if ok {
			return candidate, nil
		}
	}
}

func (g *IDGenerator) draw(length int, alphabet domain.Alphabet) (string, error) {
	var n int
	switch alphabet {
	case domain.Hex:
		n = length/2 + 1
	default:
		n = length
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", err
	}

	var s string
	switch alphabet {
	case domain.Hex:
		s = hex.EncodeToString(buf)
	default:
		s = base64.RawURLEncoding.EncodeToString(buf)
	}
	return s[:length], nil
}
