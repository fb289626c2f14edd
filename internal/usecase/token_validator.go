package usecase

import (
	"errors"

	"tidebook/internal/domain/identity"
	"tidebook/internal/pkg/jwt"

	"github.com/google/uuid"
)

var ErrTokenValidation = errors.New("token validation failed")

// Principal is the authenticated caller as established from a token. SchoolID
// is set only for school operators.
type Principal struct {
	UserID   uuid.UUID
	Role     identity.Role
	SchoolID *uuid.UUID
}

type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{jwtService: jwtService}
}

func (v *tokenValidatorImpl) ValidateToken(tokenString string) (Principal, error) {
	claims, err := v.jwtService.ValidateToken(tokenString)
	if err != nil {
		return Principal{}, ErrTokenValidation
	}

	role, err := identity.NewRole(claims.Role)
	if err != nil {
		return Principal{}, ErrTokenValidation
	}

	return Principal{
		UserID:   claims.UserID,
		Role:     role,
		SchoolID: claims.SchoolID,
	}, nil
}
