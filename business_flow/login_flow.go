package businessflow

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/amirphl/ugc-creator-finder/app/dto"
	"github.com/amirphl/ugc-creator-finder/app/services"
	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/repository"
	"github.com/amirphl/ugc-creator-finder/utils"
)

// LoginFlow represents admin authentication use cases
type LoginFlow interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
}

// LoginFlowImpl implements LoginFlow
type LoginFlowImpl struct {
	adminRepo    repository.AdminRepository
	tokenService services.TokenService
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(adminRepo repository.AdminRepository, tokenService services.TokenService) LoginFlow {
	return &LoginFlowImpl{
		adminRepo:    adminRepo,
		tokenService: tokenService,
	}
}

// Login verifies the credentials and issues a token pair. Wrong
// username and wrong password surface as the same error.
func (f *LoginFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	admin, err := f.adminRepo.ByUsername(ctx, req.Username)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to look up admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("INCORRECT_CREDENTIALS", "Incorrect username or password", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("INCORRECT_CREDENTIALS", "Incorrect username or password", ErrIncorrectPassword)
	}

	accessToken, refreshToken, err := f.tokenService.GenerateTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	if err := f.adminRepo.UpdateLastLogin(ctx, admin.ID); err != nil {
		log.Printf("login: last-login update failed for admin %d: %v", admin.ID, err)
	}

	if metadata != nil {
		log.Printf("login: admin %s authenticated from %s", admin.Username, metadata.IPAddress)
	}
	return f.toLoginResponse(admin, accessToken, refreshToken), nil
}

// RefreshToken exchanges a valid refresh token for a new pair. The used
// refresh token is revoked by the token service.
func (f *LoginFlowImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	claims, err := f.tokenService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("TOKEN_INVALID", "Invalid refresh token", err)
	}

	admin, err := f.adminRepo.ByID(ctx, claims.AdminID)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to look up admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("INCORRECT_CREDENTIALS", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	accessToken, refreshToken, err := f.tokenService.RefreshToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("TOKEN_REFRESH_FAILED", "Failed to refresh tokens", err)
	}

	return f.toLoginResponse(admin, accessToken, refreshToken), nil
}

func (f *LoginFlowImpl) toLoginResponse(admin *models.Admin, accessToken, refreshToken string) *dto.AdminLoginResponse {
	now := utils.UTCNow()
	return &dto.AdminLoginResponse{
		Admin: dto.AdminDTO{
			ID:        admin.ID,
			UUID:      admin.UUID.String(),
			Username:  admin.Username,
			IsActive:  admin.IsActive,
			CreatedAt: admin.CreatedAt.UTC().Format(time.RFC3339),
		},
		Session: dto.AdminSessionDTO{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    utils.AccessTokenTTLSeconds,
			TokenType:    "Bearer",
			CreatedAt:    now.Format(time.RFC3339),
		},
	}
}
