package authservice

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/pkg/auth"
)

type Repo interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type InitDataParser interface {
	Parse(raw string) (*auth.TelegramUser, error)
}

type Service struct {
	userRepo   Repo
	initData   InitDataParser
	jwtService auth.JWTServiceInterface
	adminIDs   []int64
	tokenTTL   time.Duration
}

func New(repo Repo, initData InitDataParser, jwtService auth.JWTServiceInterface, adminIDs []int64, tokenTTL time.Duration) *Service {
	return &Service{
		userRepo:   repo,
		initData:   initData,
		jwtService: jwtService,
		adminIDs:   adminIDs,
		tokenTTL:   tokenTTL,
	}
}

// LoginTelegram verifies Mini App init data and returns the matching user,
// registering it on first login.
func (s *Service) LoginTelegram(ctx context.Context, rawInitData string) (*domain.User, error) {
	tgUser, err := s.initData.Parse(rawInitData)
	if err != nil {
		zap.L().Info("rejected telegram login", zap.Error(err))
		return nil, err
	}
	isAdmin := slices.Contains(s.adminIDs, tgUser.ID)

	existing, err := s.userRepo.GetByTelegramID(ctx, tgUser.ID)
	if err != nil {
		zap.L().Error("can't find user", zap.Int64("telegramID", tgUser.ID), zap.Error(err))
		return nil, err
	}
	if existing != nil && existing.Username == tgUser.Username && (existing.IsAdmin || !isAdmin) {
		return existing, nil
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		ID:         uuid.NewString(),
		TelegramID: tgUser.ID,
		Username:   tgUser.Username,
		IsAdmin:    isAdmin,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		zap.L().Error("can't create user", zap.Int64("telegramID", tgUser.ID), zap.Error(err))
		return nil, err
	}
	if existing == nil {
		zap.L().Info("user registered", zap.String("userID", user.ID), zap.Int64("telegramID", user.TelegramID))
	}
	return user, nil
}

func (s *Service) GenerateToken(user *domain.User) (string, time.Time, error) {
	expirationTime := time.Now().Add(s.tokenTTL)

	token, err := s.jwtService.GenerateJWT(user.ID, user.IsAdmin, expirationTime)
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", time.Time{}, err
	}
	return token, expirationTime, nil
}
