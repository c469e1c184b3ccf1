// Package auth holds the client session: credentials exchange, the persisted
// token, and the acting user's identity and role.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/AlokMahapatra26/lastmile-client/pkg/common"
	"github.com/AlokMahapatra26/lastmile-client/pkg/kvstore"
	"github.com/AlokMahapatra26/lastmile-client/pkg/logger"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

const (
	tokenKey = "auth:token"
	userKey  = "auth:user"
)

// GatewayInterface is the backend slice the session needs.
type GatewayInterface interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
}

// Session is the authenticated state for one client process. Token and user
// survive restarts through the key-value store.
type Session struct {
	gw       GatewayInterface
	flags    kvstore.Store
	validate *validator.Validate

	mu       sync.RWMutex
	user     *models.User
	token    string
	onLogout []func()
}

// NewSession wires a session.
func NewSession(gw GatewayInterface, flags kvstore.Store) *Session {
	return &Session{
		gw:       gw,
		flags:    flags,
		validate: validator.New(),
	}
}

// OnLogout registers a hook run when the session ends. The ride store's
// eviction hangs off this.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

// Token returns the current bearer token, or "" when unauthenticated. It
// satisfies httpclient.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the authenticated account, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

// ActorID returns the acting user's ID, falling back to the token's subject
// claim when the persisted user record is missing.
func (s *Session) ActorID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user != nil {
		return s.user.ID
	}
	return claimString(s.token, "sub", "user_id")
}

// Role returns the acting role, defaulting to rider when unknown.
func (s *Session) Role() models.UserType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user != nil {
		return s.user.UserType
	}
	if claimed := claimString(s.token, "user_type"); claimed == string(models.UserTypeDriver) {
		return models.UserTypeDriver
	}
	return models.UserTypeRider
}

// Login exchanges credentials for a session and persists it.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	req := &models.LoginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, common.NewValidationError("email and password are required")
	}

	resp, err := s.gw.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.install(ctx, resp)
}

// Register creates an account and persists the resulting session.
func (s *Session) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, common.NewValidationError("invalid registration: " + err.Error())
	}

	resp, err := s.gw.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.install(ctx, resp)
}

// Restore loads a persisted session after a restart. Returns false when no
// session is stored.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	token, err := s.flags.Get(ctx, tokenKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var user *models.User
	if raw, err := s.flags.Get(ctx, userKey); err == nil {
		var decoded models.User
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			user = &decoded
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return true, nil
}

// Logout wipes the persisted session and runs the registered hooks. This is
// the only place client-side ride collections are evicted.
func (s *Session) Logout(ctx context.Context) {
	if err := s.flags.Delete(ctx, tokenKey); err != nil {
		logger.Warn("auth: failed to delete token", zap.Error(err))
	}
	if err := s.flags.Delete(ctx, userKey); err != nil {
		logger.Warn("auth: failed to delete user", zap.Error(err))
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

func (s *Session) install(ctx context.Context, resp *models.AuthResponse) (*models.User, error) {
	s.mu.Lock()
	s.token = resp.Token
	user := resp.User
	s.user = &user
	s.mu.Unlock()

	if err := s.flags.Set(ctx, tokenKey, resp.Token, 0); err != nil {
		logger.Warn("auth: failed to persist token", zap.Error(err))
	}
	if encoded, err := json.Marshal(resp.User); err == nil {
		if err := s.flags.Set(ctx, userKey, string(encoded), 0); err != nil {
			logger.Warn("auth: failed to persist user", zap.Error(err))
		}
	}

	copied := resp.User
	return &copied, nil
}

// claimString pulls the first present string claim from an unverified token.
// The client never checks signatures; the server does that on every request.
func claimString(token string, names ...string) string {
	if token == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, name := range names {
		if value, ok := claims[name].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
