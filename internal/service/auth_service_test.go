package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/queue"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/utils"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	// beforeCreate simulates a concurrent insert racing the caller.
	beforeCreate func(m *memUsers, u *model.User)
	lookupErr    error
	createErr    error
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]*model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	if m.beforeCreate != nil {
		m.beforeCreate(m, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type countingHasher struct {
	utils.Hasher
	hashes    atomic.Int32
	verifies  atomic.Int32
	hashErr   error
	verifyErr error
}

func (c *countingHasher) Hash(p string) (string, error) {
	c.hashes.Add(1)
	if c.hashErr != nil {
		return "", c.hashErr
	}
	return c.Hasher.Hash(p)
}

func (c *countingHasher) Verify(p, d string) (bool, error) {
	c.verifies.Add(1)
	if c.verifyErr != nil {
		return false, c.verifyErr
	}
	return c.Hasher.Verify(p, d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.UserRegisteredEvent
	err    error
}

func (r *recordingPublisher) PublishUserRegistered(_ context.Context, ev queue.UserRegisteredEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

type fixture struct {
	svc    *AuthService
	users  *memUsers
	hasher *countingHasher
	codec  *utils.TokenCodec
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base, err := utils.NewPasswordHasher(utils.AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := utils.NewTokenCodec("test-secret", time.Hour)
	require.NoError(t, err)

	f := &fixture{users: newMemUsers(), hasher: &countingHasher{Hasher: base}, codec: codec, events: &recordingPublisher{}}
	f.svc, err = NewAuthService(f.users, f.hasher, codec, f.events, 6, zerolog.Nop())
	require.NoError(t, err)
	f.hasher.hashes.Store(0) // ignore the dummy digest
	return f
}

func ptr(s string) *string { return &s }

func TestNewAuthService_RequiresDependencies(t *testing.T) {
	h, _ := utils.NewPasswordHasher(utils.AlgorithmBcrypt, bcrypt.MinCost)
	c, _ := utils.NewTokenCodec("s", time.Hour)

	_, err := NewAuthService(nil, h, c, nil, 6, zerolog.Nop())
	assert.ErrorContains(t, err, "user store")
	_, err = NewAuthService(newMemUsers(), nil, c, nil, 6, zerolog.Nop())
	assert.ErrorContains(t, err, "hasher")
	_, err = NewAuthService(newMemUsers(), h, nil, nil, 6, zerolog.Nop())
	assert.ErrorContains(t, err, "token issuer")
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Register(context.Background(), "user@example.com", "secret1", ptr("  Ada "))
	require.NoError(t, err)

	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "user@example.com", res.User.Email)
	assert.Equal(t, model.RoleCustomer, res.User.Role)
	require.NotNil(t, res.User.Name)
	assert.Equal(t, "Ada", *res.User.Name)

	claims, ok := f.codec.Verify(res.Token.Value)
	require.True(t, ok)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, model.RoleCustomer, claims.Role)

	stored, err := f.users.GetByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	ok, err = f.hasher.Verify("secret1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, res.User.ID, f.events.events[0].UserID)
	assert.Equal(t, "user@example.com", f.events.events[0].Email)
	assert.NotEmpty(t, f.events.events[0].EventID)
}

func TestRegister_Validation(t *testing.T) {
	tests := map[string]struct {
		email, password string
	}{
		"missing email":     {"", "secret1"},
		"missing password":  {"user@example.com", ""},
		"no at":             {"userexample.com", "secret1"},
		"two ats":           {"a@b@example.com", "secret1"},
		"empty local":       {"@example.com", "secret1"},
		"domain no dot":     {"user@localhost", "secret1"},
		"domain trailing .": {"user@example.", "secret1"},
		"domain leading .":  {"user@.com", "secret1"},
		"spaces":            {" user@example.com", "secret1"},
		"short password":    {"user@example.com", "12345"},
		"long password":     {"user@example.com", string(make([]byte, MaxPasswordBytes+1))},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Register(context.Background(), tt.email, tt.password, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, f.hasher.hashes.Load(), "no hashing before validation passes")
			assert.Empty(t, f.users.byEmail)
		})
	}
}

func TestRegister_DuplicateEmailKeepsFirstDigest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@b.com", "first-pass", nil)
	require.NoError(t, err)
	before := f.users.byEmail["a@b.com"].PasswordHash

	_, err = f.svc.Register(ctx, "a@b.com", "second-pass", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, before, f.users.byEmail["a@b.com"].PasswordHash)
}

func TestRegister_EmailIsCaseSensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@b.com", "secret1", nil)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, "A@b.com", "secret1", nil)
	assert.NoError(t, err)
}

func TestRegister_RaceOnCreateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.users.beforeCreate = func(m *memUsers, u *model.User) {
		m.mu.Lock()
		m.byEmail[u.Email] = &model.User{ID: "winner", Email: u.Email}
		m.mu.Unlock()
	}

	_, err := f.svc.Register(context.Background(), "race@example.com", "secret1", nil)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "winner", f.users.byEmail["race@example.com"].ID)
	assert.Empty(t, f.events.events)
}

func TestRegister_InternalFailures(t *testing.T) {
	t.Run("hashing", func(t *testing.T) {
		f := newFixture(t)
		f.hasher.hashErr = errors.New("boom")
		_, err := f.svc.Register(context.Background(), "user@example.com", "secret1", nil)
		assert.ErrorIs(t, err, ErrInternal)
		assert.Empty(t, f.users.byEmail)
	})
	t.Run("lookup", func(t *testing.T) {
		f := newFixture(t)
		f.users.lookupErr = errors.New("db down")
		_, err := f.svc.Register(context.Background(), "user@example.com", "secret1", nil)
		assert.ErrorIs(t, err, ErrInternal)
	})
	t.Run("create", func(t *testing.T) {
		f := newFixture(t)
		f.users.createErr = errors.New("db down")
		_, err := f.svc.Register(context.Background(), "user@example.com", "secret1", nil)
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	_, err := f.svc.Register(context.Background(), "user@example.com", "secret1", nil)
	assert.NoError(t, err)
}

func TestRegister_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Register(ctx, "user@example.com", "secret1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, f.users.byEmail)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, "user@example.com", "secret1", nil)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		res, err := f.svc.Login(ctx, "user@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, res.User.ID)
		_, ok := f.codec.Verify(res.Token.Value)
		assert.True(t, ok)
	})

	t.Run("wrong password and unknown email are identical", func(t *testing.T) {
		_, wrong := f.svc.Login(ctx, "user@example.com", "nope-nope")
		_, unknown := f.svc.Login(ctx, "ghost@example.com", "secret1")
		require.Error(t, wrong)
		require.Error(t, unknown)
		assert.ErrorIs(t, wrong, ErrAuthentication)
		assert.ErrorIs(t, unknown, ErrAuthentication)
		assert.Equal(t, wrong.Error(), unknown.Error())
	})

	t.Run("unknown email still verifies", func(t *testing.T) {
		before := f.hasher.verifies.Load()
		_, _ = f.svc.Login(ctx, "ghost@example.com", "secret1")
		assert.Equal(t, before+1, f.hasher.verifies.Load())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "", "secret1")
		assert.ErrorIs(t, err, ErrValidation)
		_, err = f.svc.Login(ctx, "not-an-email", "secret1")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestLogin_VerifierFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.users.byEmail["user@example.com"] = &model.User{ID: "u-1", Email: "user@example.com", PasswordHash: "not-a-digest", Role: model.RoleCustomer}

	_, err := f.svc.Login(context.Background(), "user@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrAuthentication)
}

func TestErrorKinds(t *testing.T) {
	err := errInvalidCredentials()
	assert.True(t, errors.Is(err, ErrAuthentication))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "invalid email or password", err.Error())
	assert.False(t, errors.Is(errors.New("x"), ErrInternal))
	assert.Equal(t, "conflict", KindConflict.String())

	wrapped := internalError("hash password", errors.New("boom"))
	assert.Equal(t, "hash password: boom", wrapped.Error())
}
