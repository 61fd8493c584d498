package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/fantasy-league/models"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a player and never exposes the hash", func(t *testing.T) {
		env := newTestEnv()
		auth := NewAuthService(env.userRepo)

		user, err := auth.Register(ctx, RegisterInput{
			Username: "alice",
			Email:    "  Alice@Example.com ",
			Password: "correct horse",
		})

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, models.RolePlayer, user.Role)
		assert.Empty(t, user.PasswordHash)

		stored, err := env.userRepo.GetByEmail(ctx, nil, "alice@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.PasswordHash)
		assert.NotEqual(t, "correct horse", stored.PasswordHash)
	})

	t.Run("short passwords are rejected", func(t *testing.T) {
		env := newTestEnv()
		auth := NewAuthService(env.userRepo)

		_, err := auth.Register(ctx, RegisterInput{Username: "alice", Email: "a@b.c", Password: "short"})

		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("taken email and username", func(t *testing.T) {
		env := newTestEnv()
		auth := NewAuthService(env.userRepo)
		_, err := auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct horse"})
		require.NoError(t, err)

		_, err = auth.Register(ctx, RegisterInput{Username: "other", Email: "alice@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, ErrAuthEmailTaken)

		_, err = auth.Register(ctx, RegisterInput{Username: "alice", Email: "new@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, ErrAuthUsernameTaken)
	})

	t.Run("username and email are required", func(t *testing.T) {
		env := newTestEnv()
		auth := NewAuthService(env.userRepo)

		_, err := auth.Register(ctx, RegisterInput{Password: "correct horse"})

		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	auth := NewAuthService(env.userRepo)
	_, err := auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := auth.Login(ctx, LoginInput{Email: "Alice@Example.com", Password: "correct horse"})

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, err := auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong password"})
		assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

		_, err = auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	auth := NewAuthService(env.userRepo)
	alice := env.addUser(t, "alice")
	env.store.users[alice.ID].PasswordHash = "hash"

	user, err := auth.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	_, err = auth.GetProfile(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
