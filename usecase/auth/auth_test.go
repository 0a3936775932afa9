package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/pkg/token"
)

type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]*domain.User{},
		byEmail: map[string]*domain.User{},
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.byID[user.ID] = &stored
	f.byEmail[user.Email] = &stored
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	out.Password = ""
	out.Token = ""
	return &out, nil
}

func (f *fakeUserRepo) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeUserRepo) SaveToken(ctx context.Context, id, tok string) error {
	user, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Token = tok
	return nil
}

type fakeCache struct {
	entries     map[string]*domain.User
	invalidated []string
	failing     bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*domain.User{}}
}

func (f *fakeCache) Get(ctx context.Context, userID string) (*domain.User, error) {
	if f.failing {
		return nil, context.DeadlineExceeded
	}
	user, ok := f.entries[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeCache) Set(ctx context.Context, user *domain.User) error {
	if f.failing {
		return context.DeadlineExceeded
	}
	f.entries[user.ID] = user
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, userID string) error {
	f.invalidated = append(f.invalidated, userID)
	delete(f.entries, userID)
	return nil
}

func newUseCase(t *testing.T) (*UseCase, *fakeUserRepo, *fakeCache) {
	t.Helper()
	repo := newFakeUserRepo()
	cache := newFakeCache()
	tokens := token.NewManager("test-secret", time.Hour)
	return New(repo, cache, tokens, nil), repo, cache
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	uc, _, _ := newUseCase(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@b.com", "secret1"},
		{"missing email", "alice", "", "secret1"},
		{"missing password", "alice", "a@b.com", ""},
		{"short username", "al", "a@b.com", "secret1"},
		{"long username", strings.Repeat("a", 31), "a@b.com", "secret1"},
		{"email without at", "alice", "ab.com", "secret1"},
		{"email without dot", "alice", "a@bcom", "secret1"},
		{"email too short", "alice", "a@.b", "secret1"},
		{"short password", "alice", "a@b.com", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := uc.Register(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
		})
	}
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	t.Parallel()

	uc, repo, _ := newUseCase(t)
	ctx := context.Background()

	user, tok, err := uc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Empty(t, user.Password)

	stored := repo.byEmail["alice@example.com"]
	require.NotEqual(t, "hunter22", stored.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))
	require.Equal(t, tok, stored.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	uc, repo, _ := newUseCase(t)
	ctx := context.Background()

	_, _, err := uc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = uc.Register(ctx, "alice2", "alice@example.com", "hunter23")
	require.ErrorIs(t, err, domain.ErrEmailTaken)
	require.Len(t, repo.byID, 1)
}

func TestLoginMissingFields(t *testing.T) {
	t.Parallel()

	uc, _, _ := newUseCase(t)
	ctx := context.Background()

	_, _, err := uc.Login(ctx, "", "pw")
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, _, err = uc.Login(ctx, "a@b.com", "")
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	uc, _, _ := newUseCase(t)
	ctx := context.Background()

	_, _, err := uc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, _, errUnknown := uc.Login(ctx, "nobody@example.com", "hunter22")
	_, _, errWrongPw := uc.Login(ctx, "alice@example.com", "wrong-password")

	require.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPw, domain.ErrInvalidCredentials)
	require.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	uc, repo, _ := newUseCase(t)
	ctx := context.Background()

	created, _, err := uc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	user, tok, err := uc.Login(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Empty(t, user.Password)
	require.NotEmpty(t, tok)
	require.Equal(t, tok, repo.byID[user.ID].Token)
}

func TestIdentifyUsesCache(t *testing.T) {
	t.Parallel()

	uc, repo, cache := newUseCase(t)
	ctx := context.Background()

	created, _, err := uc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	// First call fills the cache from the store.
	user, err := uc.Identify(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Contains(t, cache.entries, created.ID)

	// A store-invisible user still resolves while cached.
	delete(repo.byID, created.ID)
	user, err = uc.Identify(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
}

func TestIdentifyFallsBackWhenCacheFails(t *testing.T) {
	t.Parallel()

	uc, _, cache := newUseCase(t)
	ctx := context.Background()

	created, _, err := uc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	cache.failing = true
	user, err := uc.Identify(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
}

func TestIdentifyUnknownUser(t *testing.T) {
	t.Parallel()

	uc, _, _ := newUseCase(t)

	_, err := uc.Identify(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
