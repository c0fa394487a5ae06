// internal/service/auth_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"go_cpd_track/internal/config"
	"go_cpd_track/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(env *testEnv) AuthService {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key"
	cfg.JWT.ExpiryHours = 24
	return NewAuthService(env.db, env.userRepo, cfg)
}

func Test_authService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 新規ユーザーを登録できる", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)

		user, err := svc.Register(ctx, &model.RegisterRequest{
			Name:     "山田太郎",
			Email:    "yamada@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "山田太郎", user.Name)
		assert.Equal(t, model.RoleStaff, user.Role)
		assert.True(t, user.IsActive)
		// 平文パスワードは保存しない
		assert.NotEqual(t, "password123", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	})

	t.Run("正常系: 役割を指定して登録できる", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)

		user, err := svc.Register(ctx, &model.RegisterRequest{
			Name:     "佐藤花子",
			Email:    "sato@example.com",
			Password: "password123",
			Role:     "manager",
		})
		require.NoError(t, err)
		assert.Equal(t, model.RoleManager, user.Role)
	})

	t.Run("異常系: メールアドレスの重複はConflict", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)

		req := &model.RegisterRequest{Name: "山田太郎", Email: "dup@example.com", Password: "password123"}
		_, err := svc.Register(ctx, req)
		require.NoError(t, err)

		_, err = svc.Register(ctx, req)
		assert.True(t, errors.Is(err, model.ErrConflict))
	})
}

func Test_authService_Login(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, svc AuthService, email string) *model.User {
		t.Helper()
		user, err := svc.Register(ctx, &model.RegisterRequest{
			Name:     "山田太郎",
			Email:    email,
			Password: "password123",
		})
		require.NoError(t, err)
		return user
	}

	t.Run("正常系: 正しい資格情報でトークンが発行される", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)
		user := register(t, svc, "login@example.com")

		res, err := svc.Login(ctx, &model.LoginRequest{Email: "login@example.com", Password: "password123"})
		require.NoError(t, err)
		require.NotEmpty(t, res.AccessToken)

		// トークンの中身を検証
		claims := &model.JWTCustomClaims{}
		token, err := jwt.ParseWithClaims(res.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret-key"), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, user.UserID.String(), claims.Subject)
		assert.Equal(t, string(model.RoleStaff), claims.Role)
		assert.Equal(t, config.AppName, claims.Issuer)
	})

	t.Run("異常系: パスワード不一致は認証エラー", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)
		register(t, svc, "login@example.com")

		_, err := svc.Login(ctx, &model.LoginRequest{Email: "login@example.com", Password: "wrong-password"})
		assert.Error(t, err)
	})

	t.Run("異常系: 存在しないメールアドレスは認証エラー", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)

		_, err := svc.Login(ctx, &model.LoginRequest{Email: "missing@example.com", Password: "password123"})
		assert.Error(t, err)
	})

	t.Run("異常系: 無効化されたユーザーはログインできない", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)
		user := register(t, svc, "inactive@example.com")
		require.NoError(t, env.db.Model(&model.User{}).Where("user_id = ?", user.UserID).
			Update("is_active", false).Error)

		_, err := svc.Login(ctx, &model.LoginRequest{Email: "inactive@example.com", Password: "password123"})
		assert.Error(t, err)
	})
}

func Test_authService_GetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 登録済みユーザーを取得できる", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)
		user := createTestUser(t, env.db, "staff1", model.RoleStaff)

		got, err := svc.GetUser(ctx, user.UserID)
		require.NoError(t, err)
		assert.Equal(t, user.UserID, got.UserID)
	})

	t.Run("異常系: 存在しないユーザーはNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(env)

		_, err := svc.GetUser(ctx, uuid.New())
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}
