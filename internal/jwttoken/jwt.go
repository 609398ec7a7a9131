package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
)

// Claims carries the actor tuple inside our access tokens. The decoded
// claims are the single source of the actor identity for a request; the
// authoritative profile is re-fetched only on token refresh, outside this
// service.
type Claims struct {
	Role   string `json:"role"`
	Region string `json:"region,omitempty"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Service handles access token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken signs a token embedding the actor tuple. Exposed for
// the login collaborator and for tests that exercise the middleware chain.
func (s *Service) GenerateAccessToken(actor domain.Actor, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:   actor.Role.String(),
		Region: actor.Region,
		Name:   actor.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token string.
// Errors: CodeUnauthenticated for anything wrong with the token.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token claims")
	}
	return claims, nil
}

// ActorFromToken validates the token and reconstructs the actor tuple,
// enforcing the actor invariants (valid role, region presence). Implements
// the middleware TokenValidator interface.
func (s *Service) ActorFromToken(tokenString string) (domain.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return domain.Actor{}, err
	}
	actorID, err := domain.ParseActorID(claims.Subject)
	if err != nil {
		return domain.Actor{}, dErrors.New(dErrors.CodeUnauthenticated, "token subject is not a valid actor id")
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{}, dErrors.New(dErrors.CodeUnauthenticated, "token carries an unsupported role")
	}
	actor, err := domain.NewActor(actorID, role, claims.Region, claims.Name)
	if err != nil {
		return domain.Actor{}, dErrors.New(dErrors.CodeUnauthenticated, "token claims violate actor invariants")
	}
	return actor, nil
}
