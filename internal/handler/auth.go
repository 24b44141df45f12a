package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/storefront/internal/middleware"
    "github.com/iliyamo/storefront/internal/model"
    "github.com/iliyamo/storefront/internal/repository"
    "github.com/iliyamo/storefront/internal/service"
)

// Authenticator is the part of service.AuthService used by AuthHandler.
type Authenticator interface {
    Register(ctx context.Context, email, password string, name *string) (service.AuthResult, error)
    Login(ctx context.Context, email, password string) (service.AuthResult, error)
}

// UserLookup loads the account behind a session.
type UserLookup interface {
    GetByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler serves register, login, logout and me.
type AuthHandler struct {
    Auth         Authenticator
    Users        UserLookup
    SessionTTL   time.Duration
    SecureCookie bool
    Logger       zerolog.Logger
}

func NewAuthHandler(auth Authenticator, users UserLookup, ttl time.Duration, secure bool, logger zerolog.Logger) *AuthHandler {
    return &AuthHandler{Auth: auth, Users: users, SessionTTL: ttl, SecureCookie: secure, Logger: logger}
}

type registerReq struct {
    Email    string  `json:"email"`
    Password string  `json:"password"`
    Name     *string `json:"name"`
}

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type authResp struct {
    User  service.UserSummary `json:"user"`
    Token string              `json:"token"`
}

// Register creates a customer account and starts its session.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.Auth.Register(ctx, req.Email, req.Password, req.Name)
    if err != nil {
        return failService(c, h.Logger, err)
    }
    h.Logger.Info().Str("user_id", res.User.ID).Msg("user registered")
    return h.startSession(c, http.StatusCreated, res)
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.Auth.Login(ctx, req.Email, req.Password)
    if err != nil {
        return failService(c, h.Logger, err)
    }
    return h.startSession(c, http.StatusOK, res)
}

func (h *AuthHandler) startSession(c echo.Context, status int, res service.AuthResult) error {
    c.SetCookie(middleware.NewSessionCookie(res.Token.Value, h.SessionTTL, h.SecureCookie))
    return c.JSON(status, authResp{User: res.User, Token: res.Token.Value})
}

// Logout expires the session cookie.  Tokens are stateless, so a copy of
// the token stays valid until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
    c.SetCookie(middleware.ClearSessionCookie(h.SecureCookie))
    return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me returns the account behind the session.  A token for a user that no
// longer exists is treated as unauthenticated.
func (h *AuthHandler) Me(c echo.Context) error {
    id, ok := middleware.CurrentIdentity(c)
    if !ok {
        return fail(c, http.StatusUnauthorized, "not authenticated")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, id.UserID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return fail(c, http.StatusUnauthorized, "not authenticated")
        }
        return failInternal(c, h.Logger, "load session user", err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "user": service.UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
    })
}
