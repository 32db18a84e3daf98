package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/internal/store"
)

// ErrNotFound indicates that the requested record does not exist in the store.
var ErrNotFound = errors.New("record not found")

const botUsersPath = "bot_users/"

// UserRepository defines persistence operations for bot users.
type UserRepository interface {
	Find(ctx context.Context, telegramID string) (*domain.BotUser, error)
	Create(ctx context.Context, telegramID string, user *domain.BotUser) error
	Patch(ctx context.Context, telegramID string, fields map[string]any) error
}

type userRepository struct {
	client *store.Client
	log    *slog.Logger
}

// NewUserRepository creates a store-backed user repository.
func NewUserRepository(client *store.Client, log *slog.Logger) UserRepository {
	return &userRepository{
		client: client,
		log:    log,
	}
}

// Find retrieves a bot user record by telegram identifier.
func (r *userRepository) Find(ctx context.Context, telegramID string) (*domain.BotUser, error) {
	var user domain.BotUser

	found, err := r.client.Get(ctx, botUsersPath+telegramID, &user)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to fetch bot user", slog.String("telegram_id", telegramID), slog.Any("error", err))
		}
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	return &user, nil
}

// Create persists a new bot user record, replacing any value at its path.
func (r *userRepository) Create(ctx context.Context, telegramID string, user *domain.BotUser) error {
	if err := r.client.Put(ctx, botUsersPath+telegramID, user); err != nil {
		if r.log != nil {
			r.log.Error("failed to create bot user", slog.String("telegram_id", telegramID), slog.Any("error", err))
		}
		return err
	}

	return nil
}

// Patch merges the given fields into an existing bot user record.
func (r *userRepository) Patch(ctx context.Context, telegramID string, fields map[string]any) error {
	if err := r.client.Patch(ctx, botUsersPath+telegramID, fields); err != nil {
		if r.log != nil {
			r.log.Error("failed to patch bot user", slog.String("telegram_id", telegramID), slog.Any("error", err))
		}
		return err
	}

	return nil
}
