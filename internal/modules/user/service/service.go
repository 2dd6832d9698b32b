package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	search "github.com/fitlogapp/fitlog-backend/internal/modules/search/service"
	"github.com/fitlogapp/fitlog-backend/internal/modules/user/dto"
	"github.com/fitlogapp/fitlog-backend/internal/modules/user/repository"
	commonDto "github.com/fitlogapp/fitlog-backend/pkg/dto"
	"github.com/fitlogapp/fitlog-backend/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo        repository.UserRepository
	search      search.SearchService
	secret      string
	tokenTTL    time.Duration
	defaultRole string
}

func NewAuthService(repo repository.UserRepository, searchService search.SearchService) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	ttl := 24 * time.Hour
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	return &authService{
		repo:        repo,
		search:      searchService,
		secret:      secret,
		tokenTTL:    ttl,
		defaultRole: entity.RoleMember,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	username := strings.ReplaceAll(strings.TrimSpace(input.Username), " ", "_")

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, errors.New("username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, errors.New("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role, err := s.repo.FindRoleByName(ctx, s.defaultRole)
	if err != nil {
		return nil, errors.New("default role not found")
	}

	user := &entity.User{
		Username:     username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		RoleID:       &role.ID,
		Role:         *role,
	}
	profile := &entity.Profile{
		FullName: input.FullName,
		Bio:      input.Bio,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Profile = profile

	if s.search != nil {
		if err := s.search.IndexUser(user); err != nil {
			log.Printf("Failed to index user %s: %v", user.Username, err)
		}
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Role:        &user.Role,
		Profile:     user.Profile,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

// UserService is the admin-facing user management surface.
type UserService interface {
	GetAllUsers(ctx context.Context) ([]entity.User, error)
	UpdateUser(ctx context.Context, id string, input dto.UpdateUserInput, avatar *commonDto.AvatarFile) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
	search       search.SearchService
}

func NewUserService(repo repository.UserRepository, imageStorage storage.ImageStorage, searchService search.SearchService) UserService {
	return &userService{
		repo:         repo,
		imageStorage: imageStorage,
		search:       searchService,
	}
}

func (s *userService) GetAllUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, input dto.UpdateUserInput, avatar *commonDto.AvatarFile) (*dto.UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid user id")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if input.Username != "" && input.Username != user.Username {
		sanitized := strings.ReplaceAll(input.Username, " ", "_")
		if _, err := s.repo.FindByUsername(ctx, sanitized); err == nil {
			return nil, errors.New("username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = sanitized
	}

	if input.Email != "" {
		user.Email = input.Email
	}

	if input.Password != "" {
		if len(input.Password) < 8 {
			return nil, errors.New("password must be at least 8 characters")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if input.Role != "" {
		role, err := s.repo.FindRoleByName(ctx, input.Role)
		if err != nil {
			return nil, errors.New("role not found")
		}
		user.RoleID = &role.ID
		user.Role = *role
	}

	if avatar != nil && avatar.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}

	profile := user.Profile
	if profile != nil {
		if input.FullName != "" {
			profile.FullName = input.FullName
		}
		if input.Bio != nil {
			profile.Bio = input.Bio
		}
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated.PasswordHash = ""

	if s.search != nil {
		if err := s.search.IndexUser(updated); err != nil {
			log.Printf("Failed to reindex user %s: %v", updated.Username, err)
		}
	}

	return &dto.UserResponse{
		User:    updated,
		Role:    &updated.Role,
		Profile: updated.Profile,
	}, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return errors.New("invalid user id")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return errors.New("user not found")
	}

	if user.AvatarURL != nil && s.imageStorage != nil {
		if err := s.imageStorage.DeleteImage(ctx, *user.AvatarURL); err != nil {
			log.Printf("Failed to delete avatar for user %s: %v", user.Username, err)
		}
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteUser(userID.String()); err != nil {
			log.Printf("Failed to remove user %s from search index: %v", userID, err)
		}
	}

	return nil
}
