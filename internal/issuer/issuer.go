// Package issuer generates uniqueness-checked credentials for eligible users
// and marks them fulfilled exactly once.
package issuer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/internal/eligibility"
	errs "github.com/medinet/credgate/internal/errors"
	"github.com/medinet/credgate/internal/progress"
	"github.com/medinet/credgate/internal/repository"
	"github.com/medinet/credgate/pkg/metrics"
)

// NotEligibleError reports an unmet issuance condition together with the
// number of referrals still required.
type NotEligibleError struct {
	Reason    string
	Remaining int
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("not eligible: %s (remaining referrals: %d)", e.Reason, e.Remaining)
}

// Issued is the outcome of a successful Issue call. Secret is the one-time
// visible raw secret; it is empty when Reused reports a previously issued id.
type Issued struct {
	ID     string
	Secret string
	Reused bool
}

// Config holds issuance parameters.
type Config struct {
	DailyLimit  int
	MaxAttempts int
}

// Issuer coordinates eligibility checks, id generation and persistence.
type Issuer struct {
	users repository.UserRepository
	creds repository.CredentialRepository
	gate  *eligibility.Gate
	gen   TokenGenerator
	cfg   Config
	now   func() time.Time
	log   *slog.Logger
}

// New constructs an Issuer.
func New(
	users repository.UserRepository,
	creds repository.CredentialRepository,
	gate *eligibility.Gate,
	gen TokenGenerator,
	cfg Config,
	log *slog.Logger,
) *Issuer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = 10
	}
	if log == nil {
		log = slog.Default()
	}

	return &Issuer{
		users: users,
		creds: creds,
		gate:  gate,
		gen:   gen,
		cfg:   cfg,
		now:   time.Now,
		log:   log,
	}
}

// Issue generates credentials for telegramID. Calling it again after a
// success returns the existing id without generating a second credential.
func (i *Issuer) Issue(ctx context.Context, telegramID string, chatID int64) (*Issued, error) {
	user, err := i.users.Find(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotRegistered
		}
		metrics.RecordIssuanceFailure("store")
		return nil, err
	}

	if user.CredentialsIssued {
		return &Issued{ID: user.IssuedCredentialID, Reused: true}, nil
	}

	status := i.gate.Check(ctx, user, chatID)
	if !status.Eligible() {
		return nil, &NotEligibleError{Reason: status.Reason(), Remaining: status.Remaining()}
	}

	if !progress.IsTransitionAllowed(progress.Of(user), progress.StateIssued) {
		return &Issued{ID: user.IssuedCredentialID, Reused: true}, nil
	}

	id, err := i.findUnusedID(ctx)
	if err != nil {
		return nil, err
	}

	secret := i.gen.Generate()
	cred := domain.NewCredential(hashSecret(secret), i.cfg.DailyLimit, i.now())

	// The credential record is written first: a failed write must leave the
	// user unmarked so no partial success is visible.
	if err := i.creds.Create(ctx, id, cred); err != nil {
		metrics.RecordIssuanceFailure("store")
		return nil, err
	}

	err = i.users.Patch(ctx, telegramID, map[string]any{
		"credentials_generated": true,
		"generated_user_id":     id,
	})
	if err != nil {
		metrics.RecordIssuanceFailure("store")
		i.log.Error("credential written but user left unmarked",
			slog.String("telegram_id", telegramID),
			slog.String("credential_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	progress.RecordTransition(progress.StateRegistered, progress.StateIssued)
	metrics.RecordCredentialIssued()
	i.log.Info("credentials issued", slog.String("telegram_id", telegramID), slog.String("credential_id", id))

	return &Issued{ID: id, Secret: secret}, nil
}

// findUnusedID draws candidates until one is absent from the store, bounded
// by the configured attempt limit. Probing never writes.
func (i *Issuer) findUnusedID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < i.cfg.MaxAttempts; attempt++ {
		candidate := i.gen.Generate()

		taken, err := i.creds.Exists(ctx, candidate)
		if err != nil {
			metrics.RecordIssuanceFailure("store")
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	metrics.RecordIssuanceFailure("uniqueness_exhausted")
	return "", errs.NewUniquenessExhausted(i.cfg.MaxAttempts)
}

// hashSecret matches the one-way scheme used by the credential verifier:
// SHA-256 of the UTF-8 secret, hex-encoded.
func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
