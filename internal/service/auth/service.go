// Package auth implements account registration, password login and the
// access/refresh token pair with single-session refresh rotation.
package auth

import (
	"context"
	"time"

	"auditlink_chat/internal/dao/mysql"
	myredis "auditlink_chat/internal/dao/redis"
	"auditlink_chat/internal/dto/request"
	"auditlink_chat/internal/dto/respond"
	"auditlink_chat/internal/model"
	"auditlink_chat/pkg/constants"
	"auditlink_chat/pkg/errorx"
	"auditlink_chat/pkg/util/jwt"
	"auditlink_chat/pkg/util/snowflake"

	"go.uber.org/zap"
)

type Service struct {
	userRepo mysql.UserRepository
	cache    myredis.CacheService
}

func NewAuthService(userRepo mysql.UserRepository, cache myredis.CacheService) *Service {
	return &Service{userRepo: userRepo, cache: cache}
}

// Register creates an account and logs it in.
func (s *Service) Register(req request.RegisterRequest) (*respond.LoginRespond, error) {
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "email already registered")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	user := &model.UserInfo{
		Uuid:        "U" + snowflake.GenerateIDString(),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        req.Role,
		RawPassword: req.Password,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}
	zap.L().Info("user registered", zap.String("uuid", user.Uuid), zap.String("role", user.Role))
	return s.issueTokens(user)
}

// Login verifies the password and issues a token pair.
func (s *Service) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "account does not exist")
		}
		return nil, err
	}
	if user.Status != 0 {
		return nil, errorx.ErrForbidden
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "wrong email or password")
	}
	return s.issueTokens(user)
}

// Refresh rotates the token pair. Only the most recently issued refresh
// token is accepted; rotation invalidates the one presented.
func (s *Service) Refresh(req request.RefreshTokenRequest) (*respond.LoginRespond, error) {
	claims, err := jwt.ParseToken(req.RefreshToken)
	if err != nil || claims.Subject != "refresh_token" {
		return nil, errorx.ErrUnauthorized
	}

	validTokenID, err := s.cache.Get(context.Background(), myredis.RefreshTokenKey(claims.UserID))
	if err != nil {
		return nil, err
	}
	if validTokenID == "" || validTokenID != claims.TokenID {
		return nil, errorx.ErrUnauthorized
	}

	user, err := s.userRepo.FindByUuid(claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *model.UserInfo) (*respond.LoginRespond, error) {
	accessToken, err := jwt.GenerateAccessToken(user.Uuid, user.Role)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "issue access token")
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid, user.Role)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "issue refresh token")
	}

	ttl := time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS) * time.Hour
	if err := s.cache.Set(context.Background(), myredis.RefreshTokenKey(user.Uuid), tokenID, ttl); err != nil {
		return nil, err
	}

	return &respond.LoginRespond{
		Uuid:         user.Uuid,
		DisplayName:  user.DisplayName,
		Role:         user.Role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
