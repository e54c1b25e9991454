package api

import (
	"context"
	"sync"

	"github.com/diogo/chatwidget/internal/models"
)

// MockChatClient is a mock implementation of ChatClientInterface for testing
type MockChatClient struct {
	// Mock return values
	ChatFunc    func(ctx context.Context, message string) (string, error)
	ReplyVal    string
	ReplyErr    error
	HealthVal   *models.HealthResponse
	HealthErr   error
	VersionVal  *models.VersionResponse
	VersionErr  error
	EndpointVal string
	SessionVal  string

	mu       sync.Mutex
	messages []string
	closed   bool
}

var _ ChatClientInterface = (*MockChatClient)(nil)

func (m *MockChatClient) Chat(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, message)
	}
	return m.ReplyVal, m.ReplyErr
}

// Messages returns every message passed to Chat, in call order
func (m *MockChatClient) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *MockChatClient) Health(ctx context.Context) (*models.HealthResponse, error) {
	return m.HealthVal, m.HealthErr
}

func (m *MockChatClient) Version(ctx context.Context) (*models.VersionResponse, error) {
	return m.VersionVal, m.VersionErr
}

func (m *MockChatClient) Endpoint() string {
	return m.EndpointVal
}

func (m *MockChatClient) SessionID() string {
	return m.SessionVal
}

func (m *MockChatClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Closed reports whether Close was called
func (m *MockChatClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
