package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/auth"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", time.Hour)

	user := &entities.User{
		ID:    "user-1",
		Email: "student@example.com",
		Role:  entities.RoleStudent,
	}

	token, err := manager.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, entities.RoleStudent, claims.Role)
	assert.Equal(t, "student@example.com", claims.Email)
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", time.Hour)
	verifier := auth.NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(&entities.User{ID: "user-1", Role: entities.RoleAdmin})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", -time.Minute)

	token, err := manager.Issue(&entities.User{ID: "user-1", Role: entities.RoleStudent})
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.Error(t, err)
}
