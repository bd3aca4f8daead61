package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gatehouse/cmd/identity/ids"
)

// Kind selects the signing key and TTL used for a token.
type Kind int

const (
	// KindAccess is the short-lived, stateless bearer token.
	KindAccess Kind = iota
	// KindRefresh is the long-lived token tracked in the server-side ledger.
	KindRefresh
)

func (k Kind) String() string {
	if k == KindRefresh {
		return "refresh"
	}
	return "access"
}

// Claims is the verified identity envelope carried by a token.
type Claims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies access and refresh tokens.
// It is safe for concurrent use.
type Codec struct {
	issuer  string
	secrets map[Kind][]byte
	ttls    map[Kind]time.Duration
}

// NewCodec constructs a Codec, enforcing the split-key policy from cfg.
func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Codec{
		issuer: cfg.Issuer,
		secrets: map[Kind][]byte{
			KindAccess:  cfg.AccessSecret,
			KindRefresh: cfg.RefreshSecret,
		},
		ttls: map[Kind]time.Duration{
			KindAccess:  cfg.AccessTTL,
			KindRefresh: cfg.RefreshTTL,
		},
	}, nil
}

// TTL returns the configured lifetime for a token kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	return c.ttls[kind]
}

// Issue mints a signed token of the given kind for userID.
// The explicit now keeps issuance deterministic under test.
//
// Every token carries a unique jti, so two tokens minted in the same second
// for the same user are still distinct strings.
func (c *Codec) Issue(kind Kind, userID string, now time.Time) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, ErrTokenInvalid
	}

	jti, err := ids.NewULID(now)
	if err != nil {
		return "", time.Time{}, err
	}

	exp := now.Add(c.ttls[kind])
	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        jti,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secrets[kind])
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, issuer, and expiry of raw against the kind's key.
// A token signed with the other kind's key fails with ErrTokenInvalid.
func (c *Codec) Verify(kind Kind, raw string, now time.Time) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var claims jwt.RegisteredClaims
	parsed, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secrets[kind], nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !parsed.Valid || claims.Subject == "" {
		return Claims{}, ErrTokenInvalid
	}

	out := Claims{UserID: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
