package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type authService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	mailer   Mailer
	cfg      *config.Config
	now      func() time.Time
}

// NewAuthService は AuthService の新しいインスタンスを生成します
func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, mailer Mailer, cfg *config.Config) AuthService {
	return &authService{
		db:       db,
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Register はユーザーを登録し、歓迎メールを送ります。メール送信の失敗は登録を失敗させません。
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err == nil {
		logger.Warn("Email already exists")
		return nil, model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
	}
	if !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to check email existence", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
	}

	displayName := sanitizeText(req.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		DisplayName:  displayName,
		Level:        1,
	}
	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		// 事前チェックとの間に同じメールで登録された場合
		if errors.Is(err, model.ErrConflict) {
			logger.Warn("Conflict during user creation (race condition)", "error", err)
			return nil, model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		logger.Error("Failed to create user in DB", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
	}

	if err := s.sendWelcomeEmail(ctx, user); err != nil {
		logger.Warn("Failed to send welcome email", "error", err, "user_id", user.ID.String())
	}

	logger.Info("User registered", "user_id", user.ID.String())
	return user, nil
}

// Login はユーザーを認証し、sub にメールアドレスを入れた JWT を返します
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthorized)
		}
		logger.Error("Login failed: db error on FindByEmail", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Login failed: password mismatch", "user_id", user.ID.String())
		return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthorized)
	}

	now := s.now()
	ttl := s.cfg.JWT.AccessTokenTTL
	claims := &jwt.RegisteredClaims{
		Issuer:    s.cfg.App.Name,
		Subject:   user.Email,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		logger.Error("Failed to sign JWT", "error", err, "user_id", user.ID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	logger.Info("Login successful", "user_id", user.ID.String())
	return &model.LoginResponse{
		AccessToken: signedToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

func (s *authService) sendWelcomeEmail(ctx context.Context, user *model.User) error {
	subject := fmt.Sprintf("【%s】ご登録ありがとうございます", s.cfg.App.Name)
	body := fmt.Sprintf("%s さん\n\n%sにご登録いただきありがとうございます。\n以下から学習を始められます:\n%s\n", user.DisplayName, s.cfg.App.Name, s.cfg.App.FrontendURL)

	middleware.GetLogger(ctx).Info("Sending welcome email", "to", user.Email)
	return s.mailer.Send(ctx, user.Email, subject, body)
}
