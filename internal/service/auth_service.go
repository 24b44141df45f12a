package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/queue"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/utils"
)

// MaxPasswordBytes is the longest password accepted.  bcrypt ignores
// anything past 72 bytes.
const MaxPasswordBytes = 72

// UserStore is the identity store used by AuthService.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(claims utils.SessionClaims, ttl time.Duration) (utils.SessionToken, error)
}

// UserSummary is the public view of an identity.
type UserSummary struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  string  `json:"role"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  UserSummary
	Token utils.SessionToken
}

// AuthService registers and authenticates users.
type AuthService struct {
	users       UserStore
	hasher      utils.Hasher
	tokens      TokenIssuer
	events      EventPublisher
	logger      zerolog.Logger
	minPassword int
	dummyDigest string
	now         func() time.Time
}

// NewAuthService wires the service.  It hashes one random value up front
// so logins for unknown emails verify against a digest of the same cost.
func NewAuthService(users UserStore, hasher utils.Hasher, tokens TokenIssuer, events EventPublisher, minPassword int, logger zerolog.Logger) (*AuthService, error) {
	switch {
	case users == nil:
		return nil, errors.New("user store is required")
	case hasher == nil:
		return nil, errors.New("password hasher is required")
	case tokens == nil:
		return nil, errors.New("token issuer is required")
	}
	if events == nil {
		events = NopPublisher{}
	}
	if minPassword < 1 {
		minPassword = 1
	}
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		events:      events,
		logger:      logger,
		minPassword: minPassword,
		dummyDigest: dummy,
		now:         time.Now,
	}, nil
}

// Register creates a customer account and issues its first session token.
func (s *AuthService) Register(ctx context.Context, email, password string, name *string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, validationError("email and password are required")
	}
	if !validEmail(email) {
		return AuthResult{}, validationError("invalid email format")
	}
	if utf8.RuneCountInString(password) < s.minPassword {
		return AuthResult{}, validationError("password is too short")
	}
	if len(password) > MaxPasswordBytes {
		return AuthResult{}, validationError("password is too long")
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return AuthResult{}, errEmailTaken()
	case !errors.Is(err, repository.ErrNotFound):
		return AuthResult{}, internalError("lookup user", err)
	}

	digest, err := s.hash(ctx, password)
	if err != nil {
		return AuthResult{}, internalError("hash password", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: digest,
		Name:         name,
		Role:         model.RoleCustomer,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, errEmailTaken()
		}
		return AuthResult{}, internalError("create user", err)
	}

	res, err := s.issue(u)
	if err != nil {
		return AuthResult{}, err
	}

	ev := queue.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.Role,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.events.PublishUserRegistered(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Warn().Err(err).Str("user_id", u.ID).Msg("publish user.registered failed")
	}
	return res, nil
}

// Login checks the credentials and issues a session token.  An unknown
// email and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, validationError("email and password are required")
	}
	if !validEmail(email) {
		return AuthResult{}, validationError("invalid email format")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, internalError("lookup user", err)
		}
		_, _ = s.hasher.Verify(password, s.dummyDigest)
		return AuthResult{}, errInvalidCredentials()
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return AuthResult{}, internalError("verify password", err)
	}
	if !ok {
		return AuthResult{}, errInvalidCredentials()
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *model.User) (AuthResult, error) {
	tok, err := s.tokens.Issue(utils.SessionClaims{UserID: u.ID, Email: u.Email, Role: u.Role}, 0)
	if err != nil {
		return AuthResult{}, internalError("issue session token", err)
	}
	return AuthResult{
		User:  UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
		Token: tok,
	}, nil
}

type hashResult struct {
	digest string
	err    error
}

// hash runs the hasher on its own goroutine.  If ctx ends first the
// goroutine still finishes and its result is dropped.
func (s *AuthService) hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := make(chan hashResult, 1)
	go func() {
		d, err := s.hasher.Hash(password)
		out <- hashResult{digest: d, err: err}
	}()
	select {
	case r := <-out:
		return r.digest, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// validEmail requires exactly one @, a non-empty local part and a domain
// containing a dot with non-empty labels around it.
func validEmail(email string) bool {
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
