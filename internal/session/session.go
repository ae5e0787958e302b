// Package session keeps the backend bearer token and the username in browser cookies.
package session

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names shared with the browser scripts.
const (
	TokenCookie = "anihub_token"
	UserCookie  = "anihub_user"
)

// ErrNoSession is returned by Load when there is no usable token.
var ErrNoSession = errors.New("session: not logged in")

// Credentials is what the browser holds for a logged-in user.
type Credentials struct {
	Token    string
	Username string
	// Expires is the token's exp claim; zero when the token carries none.
	Expires time.Time
}

// Store reads and writes the session cookies.
type Store struct {
	Secure bool
	MaxAge time.Duration

	// now is replaced in tests.
	now func() time.Time
}

// NewStore creates a store. maxAge bounds the cookie lifetime when the token has no expiry.
func NewStore(secure bool, maxAge time.Duration) *Store {
	return &Store{Secure: secure, MaxAge: maxAge, now: time.Now}
}

// Load returns the stored credentials. A token whose exp has passed is reported as
// expired with ErrNoSession wrapped in ExpiredError so the caller can clear it.
func (s *Store) Load(r *http.Request) (*Credentials, error) {
	c, err := r.Cookie(TokenCookie)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}

	creds := &Credentials{Token: c.Value}
	if u, err := r.Cookie(UserCookie); err == nil {
		if name, err := url.QueryUnescape(u.Value); err == nil {
			creds.Username = name
		}
	}

	exp, ok := expiry(c.Value)
	if ok {
		creds.Expires = exp
		if !s.now().Before(exp) {
			return nil, &ExpiredError{Username: creds.Username, Expired: exp}
		}
	}
	return creds, nil
}

// Save stores a fresh login.
func (s *Store) Save(w http.ResponseWriter, token, username string) {
	maxAge := int(s.MaxAge.Seconds())
	if exp, ok := expiry(token); ok {
		if left := int(exp.Sub(s.now()).Seconds()); left > 0 && (maxAge <= 0 || left < maxAge) {
			maxAge = left
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UserCookie,
		Value:    url.QueryEscape(username),
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires both cookies.
func (s *Store) Clear(w http.ResponseWriter) {
	for _, name := range []string{TokenCookie, UserCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: name == TokenCookie,
			Secure:   s.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ExpiredError reports a token whose exp claim has passed.
type ExpiredError struct {
	Username string
	Expired  time.Time
}

func (e *ExpiredError) Error() string {
	return "session: token expired at " + e.Expired.UTC().Format(time.RFC3339)
}

// Unwrap lets errors.Is(err, ErrNoSession) match expired sessions too.
func (e *ExpiredError) Unwrap() error { return ErrNoSession }

// expiry reads the exp claim without verifying the signature; only the backend
// holds the key. Opaque tokens report no expiry.
func expiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
