package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID              uint      `json:"-" gorm:"primarykey"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Username        string    `json:"username" gorm:"uniqueIndex;not null"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null"`
	Password        string    `json:"-" gorm:"not null"`
	DisplayName     string    `json:"display_name"`
	Bio             string    `json:"bio" gorm:"type:text"`
	Avatar          string    `json:"avatar"`
	Verified        bool      `json:"verified" gorm:"not null;default:false"`
	AutoplayDesktop bool      `json:"autoplay_desktop" gorm:"not null;default:true"`
	AutoplayMobile  bool      `json:"autoplay_mobile" gorm:"not null;default:false"`
}

// MarshalJSON exposes the primary key as _id, like the rest of the API.
func (u User) MarshalJSON() ([]byte, error) {
	type Alias User
	return json.Marshal(&struct {
		ID uint `json:"_id"`
		*Alias
	}{
		ID:    u.ID,
		Alias: (*Alias)(&u),
	})
}

type UserDto struct {
	ID          uint   `json:"_id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Verified    bool   `json:"verified"`
}

type ProfileDto struct {
	UserDto
	Bio       string    `json:"bio,omitempty"`
	PostCount int64     `json:"postCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type PreferencesDto struct {
	AutoplayDesktop bool `json:"autoplayDesktop"`
	AutoplayMobile  bool `json:"autoplayMobile"`
}

// ToDto strips everything private from a user row.
func (u *User) ToDto() UserDto {
	if u == nil {
		return UserDto{}
	}
	return UserDto{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Verified:    u.Verified,
	}
}
