package models

import "errors"

type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"-"`
	AvatarPublicID string `json:"-"`
	AvatarURL      string `json:"avatar"`
	IsVerified     bool   `json:"isVerified"`
	VerifyToken    string `json:"-"`
}

func NewUser(username, password, email string) *User {
	return &User{Username: username, Password: password, Email: email}
}

func ValidateUser(user *User) error {
	if user.Username == "" || user.Password == "" || user.Email == "" {
		return errors.New("empty fields detected")
	}
	return nil
}

// Profile returns the public fields safe to embed in chat and message views.
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Username, Email: u.Email, AvatarURL: u.AvatarURL}
}

// Avatar returns the user's profile photo as a store asset.
func (u *User) Avatar() Asset {
	return Asset{PublicID: u.AvatarPublicID, URL: u.AvatarURL}
}
