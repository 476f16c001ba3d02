package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fixora/assetdash/internal/domain"
)

const tokenTypeAccess = "access"

var (
	ErrInvalidToken = domain.NewDomainError(domain.ErrCodeUnauthorized, "invalid token")
	ErrTokenExpired = domain.NewDomainError(domain.ErrCodeUnauthorized, "token expired")
)

// StaffClaims is the JWT payload carrying a staff identity
type StaffClaims struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	Type        string   `json:"type"`
	jwt.RegisteredClaims
}

// JWTIdentityProvider resolves staff from HS256 bearer tokens
type JWTIdentityProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTIdentityProvider creates a new JWT identity provider
func NewJWTIdentityProvider(secret, issuer string) (*JWTIdentityProvider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTIdentityProvider{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// IssueToken signs an access token for staff valid for ttl
func (p *JWTIdentityProvider) IssueToken(staff *domain.Staff, ttl time.Duration) (string, error) {
	now := p.now()
	claims := StaffClaims{
		Name:        staff.Name,
		Email:       staff.Email,
		Role:        string(staff.Role),
		Permissions: staff.Permissions,
		Type:        tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// CurrentStaff returns the staff behind the request's bearer token, or nil
// when the request carries no Authorization header.
func (p *JWTIdentityProvider) CurrentStaff(r *http.Request) (*domain.Staff, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, ErrInvalidToken
	}

	return p.ValidateToken(parts[1])
}

// ValidateToken parses an access token into a staff identity
func (p *JWTIdentityProvider) ValidateToken(tokenString string) (*domain.Staff, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	var claims StaffClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, p.handleValidationError(err)
	}
	if !token.Valid || claims.Type != tokenTypeAccess || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &domain.Staff{
		ID:          claims.Subject,
		Name:        claims.Name,
		Email:       claims.Email,
		Role:        domain.StaffRole(claims.Role),
		Permissions: claims.Permissions,
	}, nil
}

func (p *JWTIdentityProvider) handleValidationError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}
