package referral

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/internal/repository"
)

type fakeUserRepo struct {
	users   map[string]*domain.BotUser
	patches []map[string]any
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.BotUser)}
}

func (f *fakeUserRepo) Find(_ context.Context, telegramID string) (*domain.BotUser, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.users[telegramID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(_ context.Context, telegramID string, user *domain.BotUser) error {
	f.users[telegramID] = user
	return nil
}

func (f *fakeUserRepo) Patch(_ context.Context, telegramID string, fields map[string]any) error {
	f.patches = append(f.patches, fields)

	user, ok := f.users[telegramID]
	if !ok {
		return repository.ErrNotFound
	}
	if refs, ok := fields["referrals"].(map[string]string); ok {
		user.Referrals = refs
	}
	if count, ok := fields["referral_count"].(int); ok {
		user.ReferralCount = count
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLedger_RecordCreditsReferrer(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["100"] = domain.NewBotUser("100", "alice", time.Now())

	events := make(chan Event, 1)
	ledger := NewLedger(repo, 2, events, testLogger())

	count, credited, err := ledger.Record(context.Background(), "100", "200", "bob")

	require.NoError(t, err)
	assert.True(t, credited)
	assert.Equal(t, 1, count)
	assert.Equal(t, "bob", repo.users["100"].Referrals["200"])
	assert.Equal(t, 1, repo.users["100"].ReferralCount)

	select {
	case event := <-events:
		assert.Equal(t, "100", event.ReferrerID)
		assert.Equal(t, "bob", event.ReferredName)
		assert.Equal(t, 1, event.Count)
		assert.Equal(t, 2, event.Required)
	default:
		t.Fatal("expected a referral event")
	}
}

func TestLedger_SelfReferralIgnored(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["100"] = domain.NewBotUser("100", "alice", time.Now())

	ledger := NewLedger(repo, 2, nil, testLogger())

	count, credited, err := ledger.Record(context.Background(), "100", "100", "alice")

	require.NoError(t, err)
	assert.False(t, credited)
	assert.Zero(t, count)
	assert.Empty(t, repo.patches)
}

func TestLedger_UnknownReferrerIgnored(t *testing.T) {
	ledger := NewLedger(newFakeUserRepo(), 2, nil, testLogger())

	_, credited, err := ledger.Record(context.Background(), "999", "200", "bob")

	require.NoError(t, err)
	assert.False(t, credited)
}

func TestLedger_DuplicateReferralNotDoubleCounted(t *testing.T) {
	repo := newFakeUserRepo()
	user := domain.NewBotUser("100", "alice", time.Now())
	user.Referrals = map[string]string{"200": "bob"}
	user.ReferralCount = 1
	repo.users["100"] = user

	ledger := NewLedger(repo, 2, nil, testLogger())

	count, credited, err := ledger.Record(context.Background(), "100", "200", "bob")

	require.NoError(t, err)
	assert.False(t, credited)
	assert.Equal(t, 1, count)
	assert.Empty(t, repo.patches)
}

func TestLedger_CountMatchesDistinctReferrals(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["100"] = domain.NewBotUser("100", "alice", time.Now())

	ledger := NewLedger(repo, 2, nil, testLogger())

	for _, id := range []string{"200", "201", "202"} {
		_, _, err := ledger.Record(context.Background(), "100", id, "friend")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, repo.users["100"].ReferralCount)
	assert.Len(t, repo.users["100"].Referrals, 3)
}

func TestLedger_StoreErrorPropagates(t *testing.T) {
	repo := newFakeUserRepo()
	repo.findErr = errors.New("store down")

	ledger := NewLedger(repo, 2, nil, testLogger())

	_, credited, err := ledger.Record(context.Background(), "100", "200", "bob")

	assert.Error(t, err)
	assert.False(t, credited)
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantID  string
		wantOK  bool
	}{
		{"valid", "ref_12345", "12345", true},
		{"empty payload", "", "", false},
		{"missing prefix", "12345", "", false},
		{"prefix only", "ref_", "", false},
		{"path traversal", "ref_a/b", "", false},
		{"forbidden chars", "ref_a$b", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseCode(tt.payload)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, "ref_42", CodeFor("42"))
}
