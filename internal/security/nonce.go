package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActionUpload is the action namespace upload nonces are bound to.
const ActionUpload = "pasteimg_upload"

// DefaultNonceTTL bounds how long an issued nonce stays valid.
const DefaultNonceTTL = 12 * time.Hour

var ErrNonceInvalid = errors.New("nonce verification failed")

// Nonces issues and verifies per-session request tokens. A nonce is an
// HMAC-signed token carrying the action namespace it was minted for, so a
// token leaked from one form cannot authorize a different action.
type Nonces struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewNonces(secret string, ttl time.Duration) *Nonces {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &Nonces{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type nonceClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

func (n *Nonces) Issue(actor, action string) (string, error) {
	now := n.now()
	claims := nonceClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(n.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(n.secret)
}

// Verify checks the token signature, expiry and action namespace.
func (n *Nonces) Verify(token, action string) error {
	var claims nonceClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return n.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return n.now() }))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNonceInvalid, err)
	}
	if !parsed.Valid || claims.Action != action {
		return ErrNonceInvalid
	}
	return nil
}
