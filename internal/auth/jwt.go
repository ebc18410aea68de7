package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the access token payload shared with the identity service.
type Claims struct {
	Role         string `json:"role"`
	TechnicianID string `json:"technician_id,omitempty"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
	parser *jwt.Parser
}

func NewParser(secret string) *Parser {
	return &Parser{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Parse validates the signature and expiry and returns the caller identity.
func (p *Parser) Parse(token string) (model.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Principal{}, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := p.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Principal()
}

func (c Claims) Principal() (model.Principal, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	principal := model.Principal{UserID: userID}
	switch role := model.UserRole(strings.ToUpper(strings.TrimSpace(c.Role))); role {
	case model.UserRoleAdmin, model.UserRoleOffice:
		principal.Role = role
	case model.UserRoleTechnician:
		techID, err := uuid.Parse(c.TechnicianID)
		if err != nil {
			return model.Principal{}, fmt.Errorf("%w: technician token without technician_id", ErrInvalidToken)
		}
		principal.Role = role
		principal.TechnicianID = &techID
	default:
		return model.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}
	return principal, nil
}

// Sign issues an HS256 token for principal. The identity service owns token
// issuance in production; this backs local tooling and tests.
func Sign(secret string, principal model.Principal, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if principal.TechnicianID != nil {
		claims.TechnicianID = principal.TechnicianID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
