package usecase

import (
	"context"
	"errors"

	"dental-clinic-booking/internal/converter"
	"dental-clinic-booking/internal/delivery/dto"
	"dental-clinic-booking/internal/delivery/http/middleware"
	"dental-clinic-booking/internal/domain/entity"
	"dental-clinic-booking/internal/domain/repository"
	"dental-clinic-booking/internal/service"
	"dental-clinic-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, req *dto.LogoutRequest) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context) (*dto.UserResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
	auditService service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		auditService: auditService,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = u.auditService.LogEvent(ctx, &user.ID, entity.AuditActionUserLogin, entity.JSON{"email": user.Email})

	return tokens, nil
}

// Logout revokes the access token used for the request and, when supplied,
// the caller's refresh token.
func (u *authUsecase) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	userID, _, err := callerFromContext(ctx)
	if err != nil {
		return err
	}

	if req.RefreshToken != "" {
		claims, err := u.jwtService.ValidateToken(req.RefreshToken)
		if err != nil || claims.TokenType != jwt.RefreshToken || claims.UserID != userID {
			return ErrInvalidToken
		}
		if _, err := u.tokenStore.Revoke(ctx, userID, jwt.RefreshToken, claims.TokenID); err != nil {
			u.log.Warnf("Failed to revoke refresh token: %+v", err)
			return err
		}
	}

	if accessTokenID, ok := middleware.GetTokenIDFromContext(ctx); ok {
		if _, err := u.tokenStore.Revoke(ctx, userID, jwt.AccessToken, accessTokenID); err != nil {
			u.log.Warnf("Failed to revoke access token: %+v", err)
			return err
		}
	}

	email, _ := middleware.GetUserEmailFromContext(ctx)
	_ = u.auditService.LogEvent(ctx, &userID, entity.AuditActionUserLogout, entity.JSON{"email": email})

	return nil
}

// RefreshToken rotates the token pair. The presented refresh token is revoked
// before new tokens are issued, so it can be used only once.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Deleting the id is the single-use check: of two concurrent refreshes with
	// the same token only one sees the key removed.
	revoked, err := u.tokenStore.Revoke(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to revoke old refresh token: %+v", err)
		return nil, err
	}
	if !revoked {
		// A signature-valid refresh token that is no longer live has been used
		// before. Treat it as stolen and end every session of the user.
		if err := u.tokenStore.RevokeAll(ctx, claims.UserID); err != nil {
			u.log.Warnf("Failed to revoke tokens of user %d: %+v", claims.UserID, err)
		}
		u.log.Warnf("Refresh token reuse detected for user %d", claims.UserID)
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user %d: %+v", claims.UserID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	userID, _, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, user.ID, jwt.AccessToken, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, user.ID, jwt.RefreshToken, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		User:         converter.UserToResponse(user),
	}, nil
}
