// Package token issues and validates the HS256 access tokens carrying the
// caller's identity claims. Tokens are minted by the identity provider that
// fronts this backend; this service only needs to verify them and pull the
// user and group identifiers out.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "auditadmin/pkg/domain"
	dErrors "auditadmin/pkg/domain-errors"
)

// Claims are the access-token claims this backend understands. The user and
// group GUIDs scope every downstream query.
type Claims struct {
	UserGUID  string `json:"user_guid"`
	GroupGUID string `json:"group_guid"`
	jwt.RegisteredClaims
}

// JWTService verifies access tokens against a shared signing key.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey, issuer, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken mints a signed token for the given identity. Production
// traffic carries externally minted tokens; this path serves local setups and
// tests.
func (s *JWTService) GenerateAccessToken(userID id.UserID, groupID id.GroupID, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserGUID:  userID.String(),
		GroupGUID: groupID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken parses and verifies a token string, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// Identity validates a token and parses its user and group claims into typed
// IDs. A token missing either claim is rejected; every request must be scoped
// to a group.
func (s *JWTService) Identity(tokenString string) (id.UserID, id.GroupID, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return id.UserID{}, id.GroupID{}, err
	}
	userID, err := id.ParseUserID(claims.UserGUID)
	if err != nil {
		return id.UserID{}, id.GroupID{}, dErrors.New(dErrors.CodeUnauthorized, "token is missing the user identity claim")
	}
	groupID, err := id.ParseGroupID(claims.GroupGUID)
	if err != nil {
		return id.UserID{}, id.GroupID{}, dErrors.New(dErrors.CodeUnauthorized, "token is missing the group identity claim")
	}
	return userID, groupID, nil
}
