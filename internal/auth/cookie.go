package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSessionCookie is returned when the request carries no session cookie.
	ErrNoSessionCookie = errors.New("auth: no session cookie")

	// ErrInvalidSessionCookie is returned when the cookie fails verification.
	ErrInvalidSessionCookie = errors.New("auth: invalid session cookie")
)

// CookieManager issues and verifies the signed browser session cookie. The
// cookie carries only the session ID; the token and profile stay server-side.
type CookieManager struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewCookieManager creates a cookie manager. Secure controls the cookie's
// Secure attribute and should be true outside development.
func NewCookieManager(name, secret string, ttl time.Duration, secure bool) *CookieManager {
	return &CookieManager{
		name:   name,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// Issue signs a cookie for the session ID and sets it on the response.
func (m *CookieManager) Issue(w http.ResponseWriter, sessionID string) error {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		Issuer:    "healthcare-portal",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionID verifies the request's session cookie and returns the session ID.
func (m *CookieManager) SessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return "", ErrNoSessionCookie
	}
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSessionCookie
	}
	return claims.Subject, nil
}
