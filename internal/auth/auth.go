package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "shopping_session"
	issuer     = "shopping-list"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("authentication required")
	ErrInvalidSession     = errors.New("invalid session")
)

// Sessions проверяет единственную пару логин/пароль и выдаёт подписанные сессии.
type Sessions struct {
	username string
	password string
	secret   []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
}

type Options struct {
	Username string
	Password string
	Secret   string
	TTL      time.Duration
	// SecureCookie выставляет флаг Secure у cookie (когда сервер работает по HTTPS).
	SecureCookie bool
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type claims struct {
	jwt.RegisteredClaims
}

func NewSessions(opts Options) *Sessions {
	return &Sessions{
		username: opts.Username,
		password: opts.Password,
		secret:   []byte(opts.Secret),
		ttl:      opts.TTL,
		secure:   opts.SecureCookie,
		now:      time.Now,
	}
}

// CheckCredentials сравнивает за постоянное время, чтобы не подсказывать длину совпадения.
func (s *Sessions) CheckCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	return userOK && passOK
}

func (s *Sessions) Login(username, password string) (Session, error) {
	if !s.CheckCredentials(username, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.Issue(username)
}

func (s *Sessions) Issue(subject string) (Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{Token: signed, ExpiresAt: expires}, nil
}

// Verify возвращает имя пользователя из действующей сессии.
func (s *Sessions) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoSession
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if parsed.Subject != s.username {
		return "", fmt.Errorf("%w: unknown subject", ErrInvalidSession)
	}
	return parsed.Subject, nil
}

// Authenticate ищет учётные данные в запросе: Bearer-токен, Basic-авторизация, затем cookie.
func (s *Sessions) Authenticate(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(strings.ToLower(h), "bearer ") {
			return s.Verify(h[len("bearer "):])
		}
		if user, pass, ok := r.BasicAuth(); ok {
			if !s.CheckCredentials(user, pass) {
				return "", ErrInvalidCredentials
			}
			return user, nil
		}
	}

	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", ErrNoSession
	}
	return s.Verify(c.Value)
}

func (s *Sessions) SetCookie(w http.ResponseWriter, sess Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
