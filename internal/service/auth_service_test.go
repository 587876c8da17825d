package service

import (
	"context"
	"testing"
	"time"

	"drheal-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	factory, _ := newTestFactory(t)
	svc := NewAuthService(factory, time.Hour)
	ctx := context.Background()

	name := "Jane"
	registered, err := svc.Register(ctx, &dto.RegisterRequest{Email: "Jane@Example.com", Password: "password123", Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "bearer", registered.TokenType)
	assert.Equal(t, "jane@example.com", registered.User.Email)
	require.NotNil(t, registered.User.Name)
	assert.Equal(t, "Jane", *registered.User.Name)

	token, err := jwt.Parse(registered.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, registered.User.Id, claims["user_id"])
	assert.Equal(t, "jane@example.com", claims["email"])

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "jane@example.com", Password: "password123"})
		var ferr *fiber.Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, fiber.StatusConflict, ferr.Code)
	})

	t.Run("login succeeds with the right password", func(t *testing.T) {
		res, err := svc.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, registered.User.Id, res.User.Id)
		assert.NotEmpty(t, res.AccessToken)
	})

	t.Run("login rejects a wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "nope"})
		var ferr *fiber.Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, fiber.StatusUnauthorized, ferr.Code)
	})

	t.Run("login rejects an unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "password123"})
		var ferr *fiber.Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, fiber.StatusUnauthorized, ferr.Code)
	})
}

func TestAuthServiceProfile(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	factory, _ := newTestFactory(t)
	svc := NewAuthService(factory, time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)
	userId := uuid.MustParse(registered.User.Id)

	me, err := svc.Me(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", me.Email)
	assert.Nil(t, me.Name)

	name := "  Sam  "
	updated, err := svc.UpdateProfile(ctx, userId, &dto.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Sam", *updated.Name)

	_, err = svc.Me(ctx, uuid.New())
	var ferr *fiber.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, fiber.StatusNotFound, ferr.Code)
}

func TestAuthServiceRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	factory, _ := newTestFactory(t)
	svc := NewAuthService(factory, time.Hour)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Email: "a@example.com", Password: "password123"})
	assert.Error(t, err)
}
