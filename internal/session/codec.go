package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "course-enrollment"

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 16

// claims is the JWT payload. The user id goes into the standard "sub"
// claim; the display name and flashes are private claims.
type claims struct {
	Name    string  `json:"name,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
	jwt.RegisteredClaims
}

// codec signs sessions into JWT strings and verifies them on the way back.
type codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newCodec(secret string, ttl time.Duration) (*codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("session: secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}
	return &codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// encode signs s. Every write gets a new token id and a fresh expiry, so an
// active browser keeps its session alive.
func (c *codec) encode(s *Session) (string, error) {
	now := c.now()

	cl := claims{
		Name:    s.Name,
		Flashes: s.Flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	if s.UserID != 0 {
		cl.Subject = strconv.FormatInt(s.UserID, 10)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session: signing: %w", err)
	}
	return signed, nil
}

// decode verifies signature, algorithm, issuer and expiry, then rebuilds the
// session. An empty subject is a valid anonymous session.
func (c *codec) decode(tokenStr string) (*Session, error) {
	cl := &claims{}
	token, err := jwt.ParseWithClaims(
		tokenStr,
		cl,
		func(token *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("session: token expired")
		}
		return nil, fmt.Errorf("session: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("session: invalid token claims")
	}

	s := &Session{Name: cl.Name, Flashes: cl.Flashes}
	if cl.Subject != "" {
		id, err := strconv.ParseInt(cl.Subject, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("session: bad subject %q", cl.Subject)
		}
		s.UserID = id
	}
	return s, nil
}
