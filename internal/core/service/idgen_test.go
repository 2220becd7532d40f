package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/ksalp/portal/internal/core/domain"
)

var (
	base64URLPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	hexPattern       = regexp.MustCompile(`^[0-9a-f]+$`)
)

func TestIDGenerator_Alphabets(t *testing.T) {
	gen := NewIDGenerator(newStubRegistry())

	cases := []struct {
		length   int
		alphabet domain.Alphabet
		pattern  *regexp.Regexp
	}{
		{domain.UserIDLength, domain.Base64URL, base64URLPattern},
		{domain.SessionTokenLength, domain.Base64URL, base64URLPattern},
		{7, domain.Hex, hexPattern},
		{32, domain.Hex, hexPattern},
	}
	for _, tc := range cases {
		id, err := gen.Generate(context.Background(), tc.length, tc.alphabet)
		if err != nil {
			t.Fatalf("Generate(%d, %s) returned error: %v", tc.length, tc.alphabet, err)
		}
		if len(id) != tc.length {
			t.Fatalf("expected length %d, got %d (%q)", tc.length, len(id), id)
		}
		if !tc.pattern.MatchString(id) {
			t.Fatalf("identifier %q outside %s alphabet", id, tc.alphabet)
		}
	}
}

func TestIDGenerator_RetriesOnCollision(t *testing.T) {
	reg := newStubRegistry()
	reg.reject = 3
	gen := NewIDGenerator(reg)

	id, err := gen.Generate(context.Background(), 12, domain.Base64URL)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, ok := reg.used[id]; !ok {
		t.Fatalf("identifier %q was not recorded", id)
	}
	if reg.reject != 0 {
		t.Fatalf("expected all rejected draws to be consumed, %d left", reg.reject)
	}
}

func TestIDGenerator_ConcurrentUnique(t *testing.T) {
	reg := newStubRegistry()
	gen := NewIDGenerator(reg)

	const n = 200
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := gen.Generate(context.Background(), 4, domain.Hex)
			if err != nil {
				t.Errorf("Generate returned error: %v", err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate identifier %q", id)
		}
		seen[id] = struct{}{}
	}
	if len(reg.used) != n {
		t.Fatalf("expected %d registry entries, got %d", n, len(reg.used))
	}
}

func TestIDGenerator_StopsOnCancel(t *testing.T) {
	reg := newStubRegistry()
	reg.reject = 1 << 30
	gen := NewIDGenerator(reg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gen.Generate(ctx, 8, domain.Base64URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIDGenerator_InvalidLength(t *testing.T) {
	gen := NewIDGenerator(newStubRegistry())
	if _, err := gen.Generate(context.Background(), 0, domain.Hex); err == nil {
		t.Fatalf("expected error for zero length")
	}
}
