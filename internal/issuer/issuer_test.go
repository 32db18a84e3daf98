package issuer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/internal/eligibility"
	errs "github.com/medinet/credgate/internal/errors"
	"github.com/medinet/credgate/internal/repository"
)

type fakeUserRepo struct {
	users   map[string]*domain.BotUser
	patches []map[string]any
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.BotUser)}
}

func (f *fakeUserRepo) Find(_ context.Context, telegramID string) (*domain.BotUser, error) {
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
	if issued, ok := fields["credentials_generated"].(bool); ok {
		user.CredentialsIssued = issued
	}
	if id, ok := fields["generated_user_id"].(string); ok {
		user.IssuedCredentialID = id
	}
	return nil
}

type fakeCredRepo struct {
	taken     map[string]bool
	created   map[string]*domain.Credential
	createErr error
}

func newFakeCredRepo() *fakeCredRepo {
	return &fakeCredRepo{
		taken:   make(map[string]bool),
		created: make(map[string]*domain.Credential),
	}
}

func (f *fakeCredRepo) Find(_ context.Context, id string) (*domain.Credential, error) {
	if cred, ok := f.created[id]; ok {
		return cred, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCredRepo) Exists(_ context.Context, id string) (bool, error) {
	return f.taken[id], nil
}

func (f *fakeCredRepo) Create(_ context.Context, id string, cred *domain.Credential) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created[id] = cred
	f.taken[id] = true
	return nil
}

func (f *fakeCredRepo) All(_ context.Context) (map[string]domain.Credential, error) {
	out := make(map[string]domain.Credential, len(f.created))
	for id, cred := range f.created {
		out[id] = *cred
	}
	return out, nil
}

func (f *fakeCredRepo) Patch(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

type stubGenerator struct {
	tokens []string
	next   int
}

func (s *stubGenerator) Generate() string {
	token := s.tokens[s.next%len(s.tokens)]
	s.next++
	return token
}

type fakeMembership struct {
	member bool
}

func (f *fakeMembership) IsMember(context.Context, string, int64) (bool, error) {
	return f.member, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eligibleUser(id string) *domain.BotUser {
	user := domain.NewBotUser(id, "alice", time.Now())
	user.ReferralCount = 2
	return user
}

func newTestIssuer(users *fakeUserRepo, creds *fakeCredRepo, member bool, gen TokenGenerator) *Issuer {
	gate := eligibility.NewGate(&fakeMembership{member: member}, "@channel", 2, testLogger())
	return New(users, creds, gate, gen, Config{DailyLimit: 10, MaxAttempts: 10}, testLogger())
}

func TestIssue_Success(t *testing.T) {
	users := newFakeUserRepo()
	users.users["42"] = eligibleUser("42")
	creds := newFakeCredRepo()
	gen := &stubGenerator{tokens: []string{"abcd1234", "wxyz9876"}}

	issued, err := newTestIssuer(users, creds, true, gen).Issue(context.Background(), "42", 42)

	require.NoError(t, err)
	assert.False(t, issued.Reused)
	assert.Equal(t, "abcd1234", issued.ID)
	assert.Equal(t, "wxyz9876", issued.Secret)

	cred := creds.created["abcd1234"]
	require.NotNil(t, cred)
	assert.Equal(t, 10, cred.DailyLimit)
	assert.Zero(t, cred.UsageCount)

	sum := sha256.Sum256([]byte("wxyz9876"))
	assert.Equal(t, hex.EncodeToString(sum[:]), cred.SecretHash)

	user := users.users["42"]
	assert.True(t, user.CredentialsIssued)
	assert.Equal(t, "abcd1234", user.IssuedCredentialID)
}

func TestIssue_ReissueReturnsExistingID(t *testing.T) {
	users := newFakeUserRepo()
	user := eligibleUser("42")
	user.CredentialsIssued = true
	user.IssuedCredentialID = "abcd1234"
	users.users["42"] = user
	creds := newFakeCredRepo()

	issued, err := newTestIssuer(users, creds, true, &stubGenerator{tokens: []string{"efgh5678"}}).
		Issue(context.Background(), "42", 42)

	require.NoError(t, err)
	assert.True(t, issued.Reused)
	assert.Equal(t, "abcd1234", issued.ID)
	assert.Empty(t, issued.Secret)
	assert.Empty(t, creds.created)
	assert.Empty(t, users.patches)
}

func TestIssue_UnregisteredUser(t *testing.T) {
	issuer := newTestIssuer(newFakeUserRepo(), newFakeCredRepo(), true, &stubGenerator{tokens: []string{"abcd1234"}})

	_, err := issuer.Issue(context.Background(), "42", 42)

	assert.ErrorIs(t, err, errs.ErrNotRegistered)
}

func TestIssue_NotEligibleWritesNothing(t *testing.T) {
	users := newFakeUserRepo()
	user := eligibleUser("42")
	user.ReferralCount = 1
	users.users["42"] = user
	creds := newFakeCredRepo()

	_, err := newTestIssuer(users, creds, true, &stubGenerator{tokens: []string{"abcd1234"}}).
		Issue(context.Background(), "42", 42)

	var notEligible *NotEligibleError
	require.ErrorAs(t, err, &notEligible)
	assert.Equal(t, eligibility.ReasonReferrals, notEligible.Reason)
	assert.Equal(t, 1, notEligible.Remaining)
	assert.Empty(t, creds.created)
	assert.Empty(t, users.patches)
}

func TestIssue_SkipsTakenIDs(t *testing.T) {
	users := newFakeUserRepo()
	users.users["42"] = eligibleUser("42")
	creds := newFakeCredRepo()
	creds.taken["aaaa1111"] = true
	creds.taken["bbbb2222"] = true
	creds.taken["cccc3333"] = true
	gen := &stubGenerator{tokens: []string{"aaaa1111", "bbbb2222", "cccc3333", "dddd4444", "eeee5555"}}

	issued, err := newTestIssuer(users, creds, true, gen).Issue(context.Background(), "42", 42)

	require.NoError(t, err)
	assert.Equal(t, "dddd4444", issued.ID)
	assert.Equal(t, "eeee5555", issued.Secret)
}

func TestIssue_UniquenessExhaustionLeavesUserUnmarked(t *testing.T) {
	users := newFakeUserRepo()
	users.users["42"] = eligibleUser("42")
	creds := newFakeCredRepo()
	creds.taken["aaaa1111"] = true
	gen := &stubGenerator{tokens: []string{"aaaa1111"}}

	gate := eligibility.NewGate(&fakeMembership{member: true}, "@channel", 2, testLogger())
	issuer := New(users, creds, gate, gen, Config{DailyLimit: 10, MaxAttempts: 3}, testLogger())

	_, err := issuer.Issue(context.Background(), "42", 42)

	var appErr *errs.AppError
	require.ErrorAs(t, err, &appErr)
	assert.False(t, users.users["42"].CredentialsIssued)
	assert.Empty(t, users.patches)
	assert.Len(t, creds.created, 0)
}

func TestIssue_CredentialWriteFailureLeavesUserUnmarked(t *testing.T) {
	users := newFakeUserRepo()
	users.users["42"] = eligibleUser("42")
	creds := newFakeCredRepo()
	creds.createErr = errors.New("store down")

	_, err := newTestIssuer(users, creds, true, &stubGenerator{tokens: []string{"abcd1234", "wxyz9876"}}).
		Issue(context.Background(), "42", 42)

	assert.Error(t, err)
	assert.False(t, users.users["42"].CredentialsIssued)
	assert.Empty(t, users.patches)
}

func TestRandomTokenGenerator_Shape(t *testing.T) {
	gen := NewTokenGenerator(4, 4, rand.New(rand.NewSource(1)))

	pattern := regexp.MustCompile(`^[a-z]{4}[0-9]{4}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, pattern, gen.Generate())
	}
}

func TestRandomTokenGenerator_CustomShape(t *testing.T) {
	gen := NewTokenGenerator(6, 2, rand.New(rand.NewSource(1)))

	assert.Regexp(t, regexp.MustCompile(`^[a-z]{6}[0-9]{2}$`), gen.Generate())
}
