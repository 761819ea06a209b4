package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCompletionAPI is a mock implementation of CompletionAPI
type MockCompletionAPI struct {
	mock.Mock
}

func (m *MockCompletionAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockCompletionAPI) CreateChatCompletion(ctx context.Context, model string, messages []Message) (string, error) {
	args := m.Called(ctx, model, messages)
	return args.String(0), args.Error(1)
}

func newTestClient(api CompletionAPI, dimensions int) *Client {
	return &Client{
		api:        api,
		dimensions: dimensions,
		chatModel:  DefaultChatModel,
	}
}

func TestGenerateEmbeddingEmptyText(t *testing.T) {
	api := new(MockCompletionAPI)
	client := newTestClient(api, 3)

	_, err := client.GenerateEmbedding(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
	api.AssertNotCalled(t, "CreateEmbeddings", mock.Anything, mock.Anything)
}

func TestGenerateEmbedding(t *testing.T) {
	api := new(MockCompletionAPI)
	api.On("CreateEmbeddings", mock.Anything, "hello").
		Return([]float32{0.1, 0.2, 0.3}, nil)

	client := newTestClient(api, 3)

	embedding, err := client.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
}

func TestGenerateEmbeddingWrongDimensions(t *testing.T) {
	api := new(MockCompletionAPI)
	api.On("CreateEmbeddings", mock.Anything, "hello").
		Return([]float32{0.1, 0.2}, nil)

	client := newTestClient(api, 3)

	_, err := client.GenerateEmbedding(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestGenerateEmbeddingAPIError(t *testing.T) {
	api := new(MockCompletionAPI)
	api.On("CreateEmbeddings", mock.Anything, "hello").
		Return(nil, errors.New("rate limited"))

	client := newTestClient(api, 3)

	_, err := client.GenerateEmbedding(context.Background(), "hello")
	assert.ErrorContains(t, err, "rate limited")
}

func TestComplete(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "instructions"},
		{Role: RoleUser, Content: "question"},
	}

	api := new(MockCompletionAPI)
	api.On("CreateChatCompletion", mock.Anything, string(DefaultChatModel), messages).
		Return("the answer", nil)

	client := newTestClient(api, 3)

	answer, err := client.Complete(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestCompleteEmptyMessages(t *testing.T) {
	api := new(MockCompletionAPI)
	client := newTestClient(api, 3)

	_, err := client.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyText)
	api.AssertNotCalled(t, "CreateChatCompletion", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteAPIError(t *testing.T) {
	api := new(MockCompletionAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("upstream 500"))

	client := newTestClient(api, 3)

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	assert.ErrorContains(t, err, "upstream 500")
}

func TestNewClientWithConfigDefaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "sk-test"})

	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
	assert.Equal(t, string(DefaultChatModel), client.chatModel)
}

func TestNewClientFromEnvMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
