package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTTL is the validity window of every issued token
	DefaultTTL = time.Hour
	// DefaultRefreshThreshold is the remaining validity under which a token is reissued
	DefaultRefreshThreshold = 10 * time.Minute
)

// ErrUnauthenticated is the only failure callers should branch on.
// The wrapping errors below exist for logs and metrics.
var ErrUnauthenticated = errors.New("unauthenticated")

var (
	ErrTokenMalformed = fmt.Errorf("%w: token is malformed", ErrUnauthenticated)
	ErrTokenSignature = fmt.Errorf("%w: token signature is invalid", ErrUnauthenticated)
	ErrTokenExpired   = fmt.Errorf("%w: token has expired", ErrUnauthenticated)
	ErrTokenInvalid   = fmt.Errorf("%w: token is invalid", ErrUnauthenticated)
)

// Identity is what a token asserts about its bearer
type Identity struct {
	Email  string
	UserID uint
	RoleID uint
}

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"UserId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity extracts the bearer identity. Non-numeric ids collapse to zero.
func (c *Claims) Identity() Identity {
	userID, _ := strconv.ParseUint(c.UserID, 10, 64)
	roleID, _ := strconv.ParseUint(c.Role, 10, 64)
	return Identity{
		Email:  c.Subject,
		UserID: uint(userID),
		RoleID: uint(roleID),
	}
}

// ExpiresAtTime returns the expiry instant, zero when absent
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedToken is a freshly signed token
type IssuedToken struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Options configures an Authority
type Options struct {
	Secret           string
	Issuer           string
	Audience         string
	TTL              time.Duration
	RefreshThreshold time.Duration
	Now              func() time.Time
}

// Authority issues, validates and refreshes access tokens
type Authority struct {
	secret    []byte
	issuer    string
	audience  string
	ttl       time.Duration
	threshold time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

// NewAuthority builds a token authority
func NewAuthority(opts Options) *Authority {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.RefreshThreshold <= 0 {
		opts.RefreshThreshold = DefaultRefreshThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	a := &Authority{
		secret:    []byte(opts.Secret),
		issuer:    opts.Issuer,
		audience:  opts.Audience,
		ttl:       opts.TTL,
		threshold: opts.RefreshThreshold,
		now:       opts.Now,
	}
	a.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(opts.Issuer),
		jwt.WithAudience(opts.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(a.now),
	)
	return a
}

// TTL returns the validity window of issued tokens
func (a *Authority) TTL() time.Duration {
	return a.ttl
}

// Issue signs a new token for the identity
func (a *Authority) Issue(id Identity) (*IssuedToken, error) {
	// JWT timestamps have second precision; truncating keeps exp > iat after encoding
	now := a.now().Truncate(time.Second)
	expiresAt := now.Add(a.ttl)
	tokenID := uuid.New().String()

	claims := Claims{
		UserID: strconv.FormatUint(uint64(id.UserID), 10),
		Role:   strconv.FormatUint(uint64(id.RoleID), 10),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   id.Email,
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{Value: signed, ID: tokenID, ExpiresAt: expiresAt}, nil
}

// Validate checks signature, issuer, audience and lifetime and returns the claims
func (a *Authority) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	token, err := a.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// MaybeRefresh reissues the token when less than the refresh threshold of validity
// remains. It returns nil when no refresh is due. Claims must come from Validate.
func (a *Authority) MaybeRefresh(claims *Claims) (*IssuedToken, error) {
	if claims == nil || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	remaining := claims.ExpiresAt.Time.Sub(a.now())
	if remaining >= a.threshold {
		return nil, nil
	}

	return a.Issue(claims.Identity())
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}
