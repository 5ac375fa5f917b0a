package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/coastaloak/livedeck/internal/repository"
)

var (
	ErrSubjectRequired = errors.New("subject is required")
	ErrUnknownToken    = errors.New("invalid token")
	ErrTokenUsed       = errors.New("token already used")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenGeneration = errors.New("could not generate a unique token")
)

const (
	// tokenPrefix namespaces single-use tokens so they are recognizable
	// in logs and support requests without exposing the secret suffix.
	tokenPrefix = "sut_"

	// tokenEntropyBytes is the random suffix length before hex encoding.
	// 16 bytes makes guessing infeasible within any validity window.
	tokenEntropyBytes = 16

	// maxIssueAttempts bounds regeneration on the vanishingly unlikely
	// UNIQUE(token) collision.
	maxIssueAttempts = 3

	// auditPrefixLen bounds how much of a token may appear in audit
	// records. Never log more than this.
	auditPrefixLen = 12
)

// TokenService owns the single-use credential lifecycle: issuance and
// atomic consumption. No other code path marks a credential used.
type TokenService struct {
	credentials repository.CredentialRepository
	audit       *AuditService
	expiry      time.Duration
}

func NewTokenService(credentials repository.CredentialRepository, audit *AuditService, expiry time.Duration) *TokenService {
	return &TokenService{
		credentials: credentials,
		audit:       audit,
		expiry:      expiry,
	}
}

// Issue creates a fresh single-use credential for the subject. The full
// token is returned to the caller exactly once; afterwards only its
// truncated prefix ever leaves the service.
func (s *TokenService) Issue(ctx context.Context, subject string) (*model.Credential, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	now := time.Now()

	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		token, err := generateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		cred := &model.Credential{
			Token:     token,
			Subject:   subject,
			IssuedAt:  now,
			ExpiresAt: now.Add(s.expiry),
		}

		err = s.credentials.Create(ctx, cred)
		if errors.Is(err, repository.ErrDuplicateToken) {
			slog.Warn("token collision, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to store credential: %w", err)
		}

		s.audit.Record(model.AuditTokenIssued, AuditPrefix(token), subject,
			fmt.Sprintf("expires %s", cred.ExpiresAt.UTC().Format(time.RFC3339)))

		return cred, nil
	}

	return nil, ErrTokenGeneration
}

// Consume redeems a token. The check for existence, expiry and unused
// status and the used_at write happen in one conditional update against
// the store; among any number of concurrent calls on the same token
// exactly one succeeds and the rest observe the post-consumption state.
//
// Returns ErrUnknownToken, ErrTokenUsed or ErrTokenExpired on denial.
// Any other error is a store failure and must surface as such, never as
// a denial.
func (s *TokenService) Consume(ctx context.Context, token string) (*model.Credential, error) {
	cred, err := s.credentials.Consume(ctx, token)
	if err == nil {
		s.audit.Record(model.AuditTokenConsumed, AuditPrefix(token), cred.Subject, "")
		return cred, nil
	}

	if !errors.Is(err, repository.ErrCredentialNotFound) {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	// The conditional update matched nothing. A secondary read decides the
	// denial kind; it is for error quality only, the correctness decision
	// was already made by the update above.
	return nil, s.classifyDenial(ctx, token)
}

func (s *TokenService) classifyDenial(ctx context.Context, token string) error {
	existing, err := s.credentials.ByToken(ctx, token)
	if errors.Is(err, repository.ErrCredentialNotFound) {
		s.audit.Record(model.AuditConsumeDeniedUnkn, AuditPrefix(token), "", "no such token")
		return ErrUnknownToken
	}
	if err != nil {
		return fmt.Errorf("failed to classify denied token: %w", err)
	}

	if existing.IsUsed() {
		s.audit.Record(model.AuditConsumeDeniedUsed, AuditPrefix(token), existing.Subject,
			fmt.Sprintf("first used %s", existing.UsedAt.UTC().Format(time.RFC3339)))
		return ErrTokenUsed
	}

	// Unused and not matched by the update: the token expired, either
	// before the call or between the update and this read.
	s.audit.Record(model.AuditConsumeDeniedExp, AuditPrefix(token), existing.Subject,
		fmt.Sprintf("expired %s", existing.ExpiresAt.UTC().Format(time.RFC3339)))
	return ErrTokenExpired
}

// CleanupExpired is the retention hook for operators; the service never
// schedules it itself.
func (s *TokenService) CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.credentials.CleanupExpired(ctx, olderThan)
}

func generateToken() (string, error) {
	bytes := make([]byte, tokenEntropyBytes)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return tokenPrefix + hex.EncodeToString(bytes), nil
}

// AuditPrefix truncates a token for safe logging. Audit records must never
// contain the full secret.
func AuditPrefix(token string) string {
	if len(token) <= auditPrefixLen {
		return token
	}
	return token[:auditPrefixLen]
}
