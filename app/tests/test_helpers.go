package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/arshitcc/Ping-Park/internal/models"
	"github.com/arshitcc/Ping-Park/internal/ports"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

type MockChatRepository struct {
	mock.Mock
}

type MockMessageRepository struct {
	mock.Mock
}

type MockAssetStore struct {
	mock.Mock
}

type MockHasher struct {
	mock.Mock
}

type MockEmailService struct {
	mock.Mock
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationEmail(email, token string) error {
	args := m.Called(email, token)
	return args.Error(0)
}

func (m *MockHasher) GenerateFromPassword(password []byte, cost int) ([]byte, error) {
	args := m.Called(password, cost)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockHasher) CompareHashAndPassword(storedPassword []byte, userPassword []byte) error {
	args := m.Called(storedPassword, userPassword)
	return args.Error(0)
}

func (m *MockHasher) DefaultCost() int {
	return m.Called().Int(0)
}

func (m *MockTokenRepository) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) Revoke(ctx context.Context, tokenHash string, expiration time.Duration) error {
	args := m.Called(ctx, tokenHash, expiration)
	return args.Error(0)
}

func (m *MockRepository) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, username, passwordHash, email, verifyToken string) (string, error) {
	args := m.Called(ctx, username, passwordHash, email, verifyToken)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) MarkUserAsVerified(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockRepository) ListUsers(ctx context.Context, excludeUserID string) ([]models.User, error) {
	args := m.Called(ctx, excludeUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockRepository) UpdateUserAvatar(ctx context.Context, userID string, avatar models.Asset) (*models.Asset, error) {
	args := m.Called(ctx, userID, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockRepository) UpdateUserPassword(ctx context.Context, userID, passwordHash string) (int64, error) {
	args := m.Called(ctx, userID, passwordHash)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockChatRepository) CreateChat(ctx context.Context, chat *models.Chat) (string, error) {
	args := m.Called(ctx, chat)
	return args.String(0), args.Error(1)
}

func (m *MockChatRepository) GetChatByID(ctx context.Context, chatID string) (*models.Chat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) FindDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) AddParticipants(ctx context.Context, chatID, adminID string, newIDs []string) (int64, error) {
	args := m.Called(ctx, chatID, adminID, newIDs)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockChatRepository) RemoveParticipants(ctx context.Context, chatID, adminID string, removeIDs []string) (int64, error) {
	args := m.Called(ctx, chatID, adminID, removeIDs)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockChatRepository) LeaveChat(ctx context.Context, chatID, userID string) (int64, error) {
	args := m.Called(ctx, chatID, userID)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockChatRepository) RenameChat(ctx context.Context, chatID, adminID, chatName string) (int64, error) {
	args := m.Called(ctx, chatID, adminID, chatName)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockChatRepository) UpdateAvatar(ctx context.Context, chatID, adminID string, avatar models.Asset) (*models.Asset, error) {
	args := m.Called(ctx, chatID, adminID, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockChatRepository) SetLatestMessage(ctx context.Context, chatID, requesterID, messageID string) (int64, error) {
	args := m.Called(ctx, chatID, requesterID, messageID)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockChatRepository) DeleteChat(ctx context.Context, chatID string) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *MockChatRepository) GetChatView(ctx context.Context, chatID string) (*models.ChatView, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatView), args.Error(1)
}

func (m *MockChatRepository) GetChatViewsForUser(ctx context.Context, userID string) ([]models.ChatView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatView), args.Error(1)
}

func (m *MockMessageRepository) CreateMessage(ctx context.Context, message *models.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func (m *MockMessageRepository) GetMessagesByChatID(ctx context.Context, chatID string) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) GetMessageViewsByIDs(ctx context.Context, chatID string, messageIDs []string) ([]models.MessageView, error) {
	args := m.Called(ctx, chatID, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MessageView), args.Error(1)
}

func (m *MockMessageRepository) GetMessagesWithSender(ctx context.Context, chatID string, limit int) ([]models.MessageView, error) {
	args := m.Called(ctx, chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MessageView), args.Error(1)
}

func (m *MockMessageRepository) FindOwnMessages(ctx context.Context, chatID, senderID string, messageIDs []string) ([]models.Message, error) {
	args := m.Called(ctx, chatID, senderID, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) DeleteMessages(ctx context.Context, chatID string, messageIDs []string) (bool, error) {
	args := m.Called(ctx, chatID, messageIDs)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssetStore) Upload(ctx context.Context, upload ports.Upload) (*models.Asset, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockAssetStore) Delete(ctx context.Context, publicID, resourceType string) error {
	args := m.Called(ctx, publicID, resourceType)
	return args.Error(0)
}

// BusEvent is one recorded emission.
type BusEvent struct {
	Room    string
	Event   string
	Payload any
}

// BusRecorder captures bus emissions so tests can assert which rooms saw
// which events, in order.
type BusRecorder struct {
	mu     sync.Mutex
	Events []BusEvent
}

func (b *BusRecorder) EmitToRoom(roomID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, BusEvent{Room: roomID, Event: event, Payload: payload})
}

func (b *BusRecorder) EventsFor(roomID string) []BusEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []BusEvent
	for _, e := range b.Events {
		if e.Room == roomID {
			out = append(out, e)
		}
	}
	return out
}

func CreateTestRequest(url, method string, body interface{}) *http.Request {
	var buffer bytes.Buffer
	if body != nil {
		json.NewEncoder(&buffer).Encode(body)
	}

	req := httptest.NewRequest(method, url, &buffer)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func ExecuteHandler(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
