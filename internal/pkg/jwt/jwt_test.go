//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"tidebook/internal/domain/identity"
	"tidebook/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)
	userID := uuid.New()
	schoolID := uuid.New()

	token, err := svc.GenerateToken(userID, identity.RoleSchoolOperator, &schoolID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "school_operator", claims.Role)
	require.NotNil(t, claims.SchoolID)
	assert.Equal(t, schoolID, *claims.SchoolID)
}

func TestCustomerTokenHasNoSchool(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken(uuid.New(), identity.RoleCustomer, nil)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.SchoolID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := jwt.NewService("secret-a", time.Hour)
	verifier := jwt.NewService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(uuid.New(), identity.RoleCustomer, nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := jwt.NewService("test-secret", -time.Minute)

	token, err := svc.GenerateToken(uuid.New(), identity.RoleCustomer, nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)
	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
