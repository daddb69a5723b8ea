package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/theleywin/Backend-Meme-Nest/src/models"
	"github.com/theleywin/Backend-Meme-Nest/src/storage"
)

const (
	maxDisplayNameLength = 50
	maxBioLength         = 500
)

// ProfileUpdate changes the fields that are not nil.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	Avatar      *Upload
}

// Preferences changes the autoplay flags that are not nil.
type Preferences struct {
	AutoplayDesktop *bool
	AutoplayMobile  *bool
}

type UserService struct {
	db      *gorm.DB
	storage storage.Storage
}

func NewUserService(db *gorm.DB, store storage.Storage) *UserService {
	return &UserService{db: db, storage: store}
}

// Profile returns a public profile with the number of posts of the user.
func (s *UserService) Profile(ctx context.Context, username string) (*models.User, int64, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	if err != nil {
		return nil, 0, err
	}

	var posts int64
	if err := db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&posts).Error; err != nil {
		return nil, 0, err
	}
	return &user, posts, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLength {
			return nil, fmt.Errorf("%w: display name must have 1-%d characters", ErrValidation, maxDisplayNameLength)
		}
		updates["display_name"] = name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > maxBioLength {
			return nil, fmt.Errorf("%w: bio longer than %d characters", ErrValidation, maxBioLength)
		}
		updates["bio"] = bio
	}

	var avatarExt string
	if in.Avatar != nil {
		ext, err := storage.MediaExt(in.Avatar.Filename)
		if err != nil || storage.IsVideo(ext) {
			return nil, fmt.Errorf("%w: avatar must be an image", ErrValidation)
		}
		avatarExt = ext
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldAvatar := user.Avatar

	var saved string
	if in.Avatar != nil {
		saved, err = s.storage.Save(ctx, in.Avatar.Data, storage.NewStem("avatar", userID), avatarExt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		updates["avatar"] = saved
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			if saved != "" {
				s.discard(ctx, saved)
			}
			return nil, err
		}
	}
	if saved != "" && oldAvatar != "" {
		s.discard(ctx, oldAvatar)
	}
	return s.load(ctx, userID)
}

func (s *UserService) UpdatePreferences(ctx context.Context, userID uint, in Preferences) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.AutoplayDesktop != nil {
		updates["autoplay_desktop"] = *in.AutoplayDesktop
	}
	if in.AutoplayMobile != nil {
		updates["autoplay_mobile"] = *in.AutoplayMobile
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.load(ctx, userID)
}

func (s *UserService) load(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) discard(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		log.Printf("Error deleting media %s: %v", path, err)
	}
}
