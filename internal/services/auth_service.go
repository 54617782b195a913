package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"souqnest/internal/apiclient"
	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/repos"
	"souqnest/internal/validate"
)

var ErrBadCreds = errors.New("invalid email or password")

// Session storage keys written on login.
const (
	UserKey  = "user"
	TokenKey = "token"
)

// Authenticator exchanges credentials for a token and user.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.LoginResult, error)
}

// DemoAuthenticator checks the seeded SQLite users and issues HS256 tokens.
type DemoAuthenticator struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (a *DemoAuthenticator) Login(_ context.Context, email, password string) (domain.LoginResult, error) {
	u, err := a.Users.ByEmail(email)
	if err != nil {
		return domain.LoginResult{}, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return domain.LoginResult{}, ErrBadCreds
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	ttl := a.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	t := now()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(t),
			ExpiresAt: jwt.NewNumericDate(t.Add(ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	if err != nil {
		return domain.LoginResult{}, err
	}
	u.Hash = ""
	return domain.LoginResult{Token: tok, User: *u}, nil
}

// AuthService keeps the logged-in user and token in session storage.
type AuthService struct {
	Auth    Authenticator
	Storage *repos.LocalStorageRepo
	// Secret verifies locally issued tokens. When nil, tokens are only
	// inspected for expiry; the backend owns their verification.
	Secret []byte
	Now    func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	email, ok := validate.Email(email)
	if !ok || password == "" {
		return nil, ErrBadCreds
	}
	res, err := s.Auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrBadCreds) || apiclient.IsUnauthorized(err) || apiclient.IsValidation(err) || apiclient.IsNotFound(err) {
			return nil, ErrBadCreds
		}
		return nil, err
	}
	if res.Token == "" {
		return nil, ErrBadCreds
	}
	b, err := json.Marshal(res.User)
	if err != nil {
		return nil, err
	}
	store := s.Storage.For(sid)
	if err := store.SetItem(TokenKey, res.Token); err != nil {
		return nil, err
	}
	if err := store.SetItem(UserKey, string(b)); err != nil {
		_ = store.RemoveItem(TokenKey)
		return nil, err
	}
	u := res.User
	return &u, nil
}

func (s *AuthService) Logout(sid string) error {
	store := s.Storage.For(sid)
	errUser := store.RemoveItem(UserKey)
	errTok := store.RemoveItem(TokenKey)
	return errors.Join(errUser, errTok)
}

// CurrentUser returns the session user, or nil when nobody is logged in.
// Unreadable user data or an expired token ends the session.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	store := s.Storage.For(sid)
	raw, ok, err := store.GetItem(UserKey)
	if err != nil || !ok {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		applog.Warn(nil, "auth.user.parse.fail", err, nil)
		_ = s.Logout(sid)
		return nil, nil
	}
	tok, _, err := store.GetItem(TokenKey)
	if err != nil {
		return nil, err
	}
	if !s.tokenValid(tok) {
		applog.Info(nil, "auth.token.expired", map[string]any{"user_id": u.ID})
		_ = s.Logout(sid)
		return nil, nil
	}
	return &u, nil
}

// Token returns the bearer token of the session, if any.
func (s *AuthService) Token(sid string) string {
	tok, _, err := s.Storage.For(sid).GetItem(TokenKey)
	if err != nil {
		return ""
	}
	return tok
}

func (s *AuthService) tokenValid(tok string) bool {
	if tok == "" {
		return false
	}
	if strings.Count(tok, ".") != 2 {
		// opaque backend token: nothing to inspect
		return true
	}
	claims := &jwt.RegisteredClaims{}
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.Secret != nil {
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		_, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return s.Secret, nil }, opts...)
		return err == nil
	}
	if _, _, err := jwt.NewParser(opts...).ParseUnverified(tok, claims); err != nil {
		return false
	}
	return claims.ExpiresAt == nil || s.now().Before(claims.ExpiresAt.Time)
}

// IsAdmin reports whether u may use the admin surface.
func (s *AuthService) IsAdmin(u *domain.User) bool { return u.IsAdmin() }
