package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/internal/store"
)

const credentialsPath = "users/"

// CredentialRepository defines persistence operations for issued credentials.
type CredentialRepository interface {
	Find(ctx context.Context, id string) (*domain.Credential, error)
	// Exists reports whether a credential record occupies the given id.
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, id string, cred *domain.Credential) error
	// All returns every credential record keyed by id.
	All(ctx context.Context) (map[string]domain.Credential, error)
	Patch(ctx context.Context, id string, fields map[string]any) error
}

type credentialRepository struct {
	client *store.Client
	log    *slog.Logger
}

// NewCredentialRepository creates a store-backed credential repository.
func NewCredentialRepository(client *store.Client, log *slog.Logger) CredentialRepository {
	return &credentialRepository{
		client: client,
		log:    log,
	}
}

// Find retrieves a credential record by its identifier.
func (r *credentialRepository) Find(ctx context.Context, id string) (*domain.Credential, error) {
	var cred domain.Credential

	found, err := r.client.Get(ctx, credentialsPath+id, &cred)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to fetch credential", slog.String("credential_id", id), slog.Any("error", err))
		}
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	return &cred, nil
}

// Exists probes the store for a record at the candidate id without decoding it.
func (r *credentialRepository) Exists(ctx context.Context, id string) (bool, error) {
	var raw json.RawMessage

	found, err := r.client.Get(ctx, credentialsPath+id, &raw)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to probe credential id", slog.String("credential_id", id), slog.Any("error", err))
		}
		return false, err
	}

	return found, nil
}

// All fetches the full credential collection in one request.
func (r *credentialRepository) All(ctx context.Context) (map[string]domain.Credential, error) {
	creds := make(map[string]domain.Credential)

	if _, err := r.client.Get(ctx, "users", &creds); err != nil {
		if r.log != nil {
			r.log.Error("failed to fetch credential collection", slog.Any("error", err))
		}
		return nil, err
	}

	return creds, nil
}

// Patch merges the given fields into an existing credential record.
func (r *credentialRepository) Patch(ctx context.Context, id string, fields map[string]any) error {
	if err := r.client.Patch(ctx, credentialsPath+id, fields); err != nil {
		if r.log != nil {
			r.log.Error("failed to patch credential", slog.String("credential_id", id), slog.Any("error", err))
		}
		return err
	}

	return nil
}

// Create persists a new credential record.
func (r *credentialRepository) Create(ctx context.Context, id string, cred *domain.Credential) error {
	if err := r.client.Put(ctx, credentialsPath+id, cred); err != nil {
		if r.log != nil {
			r.log.Error("failed to create credential", slog.String("credential_id", id), slog.Any("error", err))
		}
		return err
	}

	return nil
}
