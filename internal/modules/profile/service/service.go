package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	achievementRepo "github.com/fitlogapp/fitlog-backend/internal/modules/achievement/repository"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
	profileDto "github.com/fitlogapp/fitlog-backend/internal/modules/profile/dto"
	search "github.com/fitlogapp/fitlog-backend/internal/modules/search/service"
	userRepo "github.com/fitlogapp/fitlog-backend/internal/modules/user/repository"
	commonDto "github.com/fitlogapp/fitlog-backend/pkg/dto"
	"github.com/fitlogapp/fitlog-backend/pkg/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	metrics      metrics.MetricsService
	unlocks      achievementRepo.UnlockRepository
	imageStorage storage.ImageStorage
	search       search.SearchService
	sanitizer    *bluemonday.Policy
}

func NewProfileService(
	repo userRepo.UserRepository,
	metricsService metrics.MetricsService,
	unlocks achievementRepo.UnlockRepository,
	imageStorage storage.ImageStorage,
	searchService search.SearchService,
) ProfileService {
	return &profileService{
		repo:         repo,
		metrics:      metricsService,
		unlocks:      unlocks,
		imageStorage: imageStorage,
		search:       searchService,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	user.PasswordHash = ""

	m, err := s.metrics.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.unlocks.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &profileDto.ProfileResponse{
		User:           user,
		Profile:        user.Profile,
		Metrics:        m,
		UnlockedBadges: unlocked,
	}, nil
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.New("user not found")
	}

	m, err := s.metrics.ForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.unlocks.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := &profileDto.PublicProfileResponse{
		Username:       user.Username,
		AvatarURL:      user.AvatarURL,
		CreatedAt:      user.CreatedAt,
		Metrics:        m,
		UnlockedBadges: unlocked,
	}
	if user.Profile != nil {
		resp.FullName = user.Profile.FullName
		resp.Bio = user.Profile.Bio
	}
	return resp, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if input.Username != nil && *input.Username != "" && *input.Username != user.Username {
		sanitizedUsername := strings.ReplaceAll(*input.Username, " ", "_")
		if len(sanitizedUsername) < 3 {
			return nil, errors.New("username must be at least 3 characters")
		}
		if len(sanitizedUsername) > 50 {
			return nil, errors.New("username must be at most 50 characters")
		}
		if _, err := s.repo.FindByUsername(ctx, sanitizedUsername); err == nil {
			return nil, errors.New("username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = sanitizedUsername
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return nil, errors.New("password must be at least 8 characters")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
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
		if input.FullName != nil && *input.FullName != "" {
			profile.FullName = *input.FullName
		}
		if input.Bio != nil {
			// Bio renders on public profiles; strip all markup.
			clean := s.sanitizer.Sanitize(*input.Bio)
			profile.Bio = &clean
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

	m, err := s.metrics.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.unlocks.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &profileDto.ProfileResponse{
		User:           updated,
		Profile:        updated.Profile,
		Metrics:        m,
		UnlockedBadges: unlocked,
	}, nil
}
