package service

import (
	"errors"
	"log"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/identity"
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"
	"go-mt-distribution/pkg/jwt"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

type AuthService interface {
	Login(username, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
}

type LoginResponse struct {
	Token       string             `json:"token"`
	User        model.UserResponse `json:"user"`
	Roles       []string           `json:"roles"`
	Permissions []string           `json:"permissions"`
}

type TokenValidationResponse struct {
	User        model.UserResponse `json:"user"`
	Roles       []string           `json:"roles"`
	Permissions []string           `json:"permissions"`
}

type authService struct {
	userRepo repository.UserRepository
	resolver PermissionResolver
	identity identity.Client
	audit    AuditTrail
}

func NewAuthService(userRepo repository.UserRepository, resolver PermissionResolver, identityClient identity.Client, audit AuditTrail) AuthService {
	return &authService{
		userRepo: userRepo,
		resolver: resolver,
		identity: identityClient,
		audit:    audit,
	}
}

// Login verifies credentials against the central directory and mirrors the
// returned profile into the local user record: the account is created on the
// first successful login and its branch/department refreshed on every one
// after that. The local password hash (bootstrap admin) is the fallback when
// the directory rejects or is unreachable.
func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.authenticate(username, password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		log.Printf("login %s: failed to update last login: %v", username, err)
	}

	// Resolved fresh, never from a cached snapshot. This also guarantees
	// the user ends up with at least one role.
	access, err := s.resolver.Resolve(user.ID)
	if err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, user.FullName, user.BranchBa, access.Roles)
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to sign token: %v", err)
	}

	if err := s.audit.Log(&model.ActivityLog{
		UserID:     user.ID,
		Action:     model.ActionLogin,
		Resource:   "user",
		ResourceID: user.ID.String(),
	}); err != nil {
		log.Printf("login %s: failed to write activity entry: %v", username, err)
	}

	return &LoginResponse{
		Token:       token,
		User:        user.ToResponse(),
		Roles:       access.Roles,
		Permissions: access.Permissions,
	}, nil
}

func (s *authService) authenticate(username, password string) (*model.User, error) {
	profile, err := s.identity.Authenticate(username, password)
	switch {
	case err == nil:
		return s.upsertFromProfile(profile)
	case errors.Is(err, identity.ErrInvalidCredentials):
		return s.localAuthenticate(username, password)
	case errors.Is(err, identity.ErrUnavailable):
		// Directory down: local credentials (the bootstrap admin) still work.
		if user, lerr := s.localAuthenticate(username, password); lerr == nil {
			return user, nil
		}
		return nil, apperr.E(apperr.ErrDependency, "identity directory unavailable: %v", err)
	default:
		return nil, apperr.E(apperr.ErrDependency, "identity check failed: %v", err)
	}
}

func (s *authService) localAuthenticate(username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) upsertFromProfile(profile *identity.Profile) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(profile.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			Username:   profile.Username,
			FullName:   profile.FullName,
			BranchBa:   profile.BranchBa,
			Department: profile.Department,
			IsActive:   true,
		}
		user.CreatedBy = "identity"
		user.UpdatedBy = "identity"
		if err := s.userRepo.Create(user); err != nil {
			return nil, apperr.E(apperr.ErrDependency, "failed to create user: %v", err)
		}
		return user, nil
	}
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to load user: %v", err)
	}

	user.FullName = profile.FullName
	user.BranchBa = profile.BranchBa
	user.Department = profile.Department
	user.UpdatedBy = "identity"
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to refresh user: %v", err)
	}
	return user, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// The token's role snapshot is display-only; re-resolve for the answer.
	access, err := s.resolver.Resolve(user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenValidationResponse{
		User:        user.ToResponse(),
		Roles:       access.Roles,
		Permissions: access.Permissions,
	}, nil
}
