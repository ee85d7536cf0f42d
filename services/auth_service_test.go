package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alvine998/marketplace-backend/models"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, []byte("test-secret"), zap.NewNop())

	user, svcErr := svc.Register(context.Background(), &RegisterRequest{
		Email:    "Ani@Example.com",
		Password: "rahasia-123",
		Name:     "Ani",
	})
	require.Nil(t, svcErr)
	assert.Equal(t, "ani@example.com", user.Email)
	assert.Equal(t, "user", user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("rahasia-123")))

	resp, svcErr := svc.Login(context.Background(), &LoginRequest{
		Email:    "ani@example.com",
		Password: "rahasia-123",
	})
	require.Nil(t, svcErr)
	require.NotEmpty(t, resp.Token)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "user", claims["role"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	existing := &models.User{ID: uuid.New(), Email: "taken@example.com"}
	svc := NewAuthService(newFakeUserRepo(existing), []byte("test-secret"), zap.NewNop())

	_, svcErr := svc.Register(context.Background(), &RegisterRequest{
		Email:    "taken@example.com",
		Password: "whatever1",
		Name:     "Dup",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	existing := &models.User{ID: uuid.New(), Email: "b@example.com", Password: string(hash)}
	svc := NewAuthService(newFakeUserRepo(existing), []byte("test-secret"), zap.NewNop())

	_, svcErr := svc.Login(context.Background(), &LoginRequest{Email: "b@example.com", Password: "wrong"})
	require.NotNil(t, svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)

	_, svcErr = svc.Login(context.Background(), &LoginRequest{Email: "missing@example.com", Password: "x"})
	require.NotNil(t, svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)
}
