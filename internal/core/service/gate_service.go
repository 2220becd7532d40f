package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/netip"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/sha3"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

// DefaultMaxBodyBytes is the largest accepted declared payload.
const DefaultMaxBodyBytes int64 = 2 << 20

// loggedHeaders is the allow-list of request headers kept in the access log.
var loggedHeaders = []string{"Host", "Accept", "Accept-Language", "Accept-Encoding", "Content-Type"}

// ScorePolicy decides the new score of an address before a request is
// served. Returning rec.Score leaves it unchanged.
type ScorePolicy interface {
	Rescore(ctx context.Context, rec domain.IPScore) int
}

// StaticPolicy never changes a score. Scores are only set by operators.
type StaticPolicy struct{}

func (StaticPolicy) Rescore(_ context.Context, rec domain.IPScore) int {
	return rec.Score
}

type GateConfig struct {
	InitialScore int
	MaxBodyBytes int64
	Policy       ScorePolicy
}

// GateService scores every inbound request's address and writes the
// access log.
type GateService struct {
	scores  ports.IPScoreRepository
	initial int
	maxBody int64
	policy  ScorePolicy
	access  zerolog.Logger
}

func NewGateService(scores ports.IPScoreRepository, cfg GateConfig, access zerolog.Logger) *GateService {
	if cfg.InitialScore <= 0 {
		cfg.InitialScore = domain.DefaultIPScore
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Policy == nil {
		cfg.Policy = StaticPolicy{}
	}
	return &GateService{
		scores:  scores,
		initial: cfg.InitialScore,
		maxBody: cfg.MaxBodyBytes,
		policy:  cfg.Policy,
		access:  access,
	}
}

// Admit loads or creates the score of ip and decides whether the request
// may proceed.
func (g *GateService) Admit(ctx context.Context, ip string, contentLength int64) (ports.GateVerdict, error) {
	rec, err := g.scores.GetOrCreate(ctx, ip, g.initial)
	if err != nil {
		return ports.GateVerdict{}, fmt.Errorf("load ip score: %w", err)
	}

	score := g.policy.Rescore(ctx, *rec)
	if score != rec.Score {
		if err := g.scores.UpdateScore(ctx, ip, score); err != nil {
			return ports.GateVerdict{}, fmt.Errorf("update ip score: %w", err)
		}
		rec.Score = score
	}

	return ports.GateVerdict{
		Score:    rec.Score,
		Banned:   rec.Banned(),
		TooLarge: contentLength > g.maxBody,
	}, nil
}

// Record writes one access-log line. The raw address is never logged.
func (g *GateService) Record(e ports.AccessEntry) {
	headers := zerolog.Dict()
	for k, v := range FilterHeaders(e.Host, e.Headers) {
		headers.Str(k, v)
	}

	g.access.Info().
		Str("ip_hash", HashIP(e.IP)).
		Int("score", e.Score).
		Bool("authenticated", e.Authenticated).
		Str("method", e.Method).
		Str("path", e.Path).
		Str("user_agent", e.UserAgent).
		Dict("headers", headers).
		Int64("content_length", e.ContentLength).
		Int("status", e.Status).
		Str("request_id", e.RequestID).
		Msg("request")
}

// HashIP returns the base64url SHA3-512 digest of the packed address, or
// of the raw string when it does not parse.
func HashIP(ip string) string {
	var packed []byte
	if addr, err := netip.ParseAddr(ip); err == nil {
		packed = addr.Unmap().AsSlice()
	} else {
		packed = []byte(ip)
	}
	sum := sha3.Sum512(packed)
	return base64.URLEncoding.EncodeToString(sum[:])
}

// FilterHeaders keeps only the allow-listed headers. Go moves Host out of
// the header map, so it is passed separately.
func FilterHeaders(host string, h http.Header) map[string]string {
	out := make(map[string]string, len(loggedHeaders))
	for _, name := range loggedHeaders {
		if name == "Host" {
			if host != "" {
				out[name] = host
			}
			continue
		}
		if v := h.Get(name); v != "" {
			out[name] = v
		}
	}
	return out
}
