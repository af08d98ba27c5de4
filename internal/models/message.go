package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type ContentKind string

const (
	ContentText ContentKind = "text"
	ContentFile ContentKind = "file"
)

// FileContent is an uploaded attachment with its optional caption.
type FileContent struct {
	Caption string `json:"caption"`
	File    Asset  `json:"file"`
}

// MessageContent is a tagged union: either plain text or a file attachment.
// Kind selects the active arm; every switch over it must be exhaustive.
type MessageContent struct {
	Kind ContentKind
	Text string
	File *FileContent
}

func TextContent(text string) MessageContent {
	return MessageContent{Kind: ContentText, Text: strings.TrimSpace(text)}
}

func FileMessageContent(caption string, file Asset) MessageContent {
	return MessageContent{Kind: ContentFile, File: &FileContent{Caption: strings.TrimSpace(caption), File: file}}
}

func (c MessageContent) Validate() error {
	switch c.Kind {
	case ContentText:
		if strings.TrimSpace(c.Text) == "" {
			return errors.New("text content cannot be empty")
		}
		return nil
	case ContentFile:
		if c.File == nil {
			return errors.New("file content is missing")
		}
		f := c.File.File
		if f.PublicID == "" || f.URL == "" || f.OriginalFilename == "" {
			return errors.New("file content requires publicId, url and originalFilename")
		}
		return nil
	default:
		return fmt.Errorf("unknown content kind %q", c.Kind)
	}
}

// The wire shape mirrors the stored document: a bare string for text,
// an object for attachments.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ContentText:
		return json.Marshal(c.Text)
	case ContentFile:
		return json.Marshal(c.File)
	default:
		return nil, fmt.Errorf("unknown content kind %q", c.Kind)
	}
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = TextContent(text)
		return nil
	}

	var file FileContent
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	*c = MessageContent{Kind: ContentFile, File: &file}
	return nil
}

type Message struct {
	ID        string         `json:"id"`
	ChatID    string         `json:"chatId"`
	SenderID  string         `json:"senderId"`
	Content   MessageContent `json:"message"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// MessageView is a message merged with its sender's public profile.
type MessageView struct {
	Message
	Sender UserProfile `json:"sender"`
}
