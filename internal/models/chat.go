package models

import "time"

// Asset is a reference to a binary object held by the external asset store.
type Asset struct {
	PublicID         string `json:"publicId"`
	URL              string `json:"url"`
	OriginalFilename string `json:"originalFilename,omitempty"`
	ResourceType     string `json:"resourceType,omitempty"`
}

func (a Asset) IsZero() bool {
	return a.PublicID == "" && a.URL == ""
}

type Chat struct {
	ID              string    `json:"id"`
	ChatName        string    `json:"chatName,omitempty"`
	IsGroupChat     bool      `json:"isGroupChat"`
	ParticipantIDs  []string  `json:"participantIds"`
	Admin           string    `json:"admin,omitempty"`
	Avatar          Asset     `json:"avatar"`
	LatestMessageID string    `json:"latestMessageId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasParticipant reports whether userID is a current member of the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// UserProfile is the public slice of a user embedded in chat and message views.
type UserProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar"`
}

// ChatView is the read-model projection of a chat: the chat document merged
// with its participants' public profiles and the joined latest message.
// It is recomputed from the repository on every read, never cached.
type ChatView struct {
	Chat
	Participants  []UserProfile `json:"participants"`
	LatestMessage *MessageView  `json:"latestMessage,omitempty"`
}
