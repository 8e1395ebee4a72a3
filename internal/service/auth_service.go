package service

import (
	"errors"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/internal/domain"
	"github.com/devlink/devlink-backend/internal/repository"
	"github.com/devlink/devlink-backend/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService business logic for signup, login and token exchange
type AuthService interface {
	Register(req *domain.RegisterRequest) (*domain.TokenResponse, error)
	Login(req *domain.LoginRequest) (*domain.TokenResponse, error)
	Refresh(refreshToken string) (*domain.TokenResponse, error)
	UsernameAvailable(username string) (bool, error)
	GithubLink(userID string) (*domain.GithubLinkResponse, error)
}

type authService struct {
	memberRepo repository.MemberRepository
	jwtManager *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(memberRepo repository.MemberRepository, jwtManager *jwt.Manager) AuthService {
	return &authService{memberRepo: memberRepo, jwtManager: jwtManager}
}

// Register creates a member account and returns a token pair
func (s *authService) Register(req *domain.RegisterRequest) (*domain.TokenResponse, error) {
	taken, err := s.memberRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.ErrUserAlreadyExists
	}
	taken, err = s.memberRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	member := &domain.Member{
		UserID:   uuid.New().String(),
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := s.memberRepo.Create(member); err != nil {
		return nil, err
	}
	return s.tokenPair(member)
}

// Login verifies credentials and returns a token pair
func (s *authService) Login(req *domain.LoginRequest) (*domain.TokenResponse, error) {
	member, err := s.memberRepo.FindByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(req.Password)) != nil {
		return nil, common.ErrInvalidCredentials
	}
	return s.tokenPair(member)
}

// Refresh exchanges a valid refresh token for a fresh pair
func (s *authService) Refresh(refreshToken string) (*domain.TokenResponse, error) {
	claims, err := s.jwtManager.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, common.ErrExpiredToken
		}
		return nil, common.ErrInvalidToken
	}

	member, err := s.memberRepo.FindByUserID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return s.tokenPair(member)
}

// UsernameAvailable reports whether a username is free
func (s *authService) UsernameAvailable(username string) (bool, error) {
	if username == "" {
		return false, common.ErrInvalidInput
	}
	taken, err := s.memberRepo.ExistsByUsername(username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// GithubLink reports whether a member has a linked GitHub account and its
// username. Consumed by the collaboration-invite acceptance flow.
func (s *authService) GithubLink(userID string) (*domain.GithubLinkResponse, error) {
	member, err := s.memberRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &domain.GithubLinkResponse{
		Linked:   member.GithubUsername != "",
		Username: member.GithubUsername,
	}, nil
}

func (s *authService) tokenPair(member *domain.Member) (*domain.TokenResponse, error) {
	access, err := s.jwtManager.GenerateAccessToken(member.UserID, member.Username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(member.UserID, member.Username)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Member:       member.ToResponse(),
	}, nil
}
