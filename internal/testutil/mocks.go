package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/maclinea/ledgerlingo/internal/batch"
)

// MockTranslator mocks the batch translation service. By default every item
// is translated to "IT " + text.
type MockTranslator struct {
	// Errors fails the call with the given 0-based index
	Errors map[int]error
	// Skip drops these source strings from every reply
	Skip map[string]bool
	// Extra adds these ids to every reply
	Extra map[int]string
	Calls [][]batch.Item
}

// TranslateBatch records the call and returns mock translations
func (m *MockTranslator) TranslateBatch(ctx context.Context, items []batch.Item) (map[int]string, error) {
	call := len(m.Calls)
	m.Calls = append(m.Calls, items)

	if err, ok := m.Errors[call]; ok {
		return nil, err
	}

	result := make(map[int]string)
	for _, item := range items {
		if m.Skip[item.Text] {
			continue
		}
		result[item.ID] = "IT " + item.Text
	}
	for id, text := range m.Extra {
		result[id] = text
	}
	return result, nil
}

// ChatHandler produces the status and content for one chat request. For a
// 200 status content becomes the first choice's message, otherwise it is
// written as the raw response body.
type ChatHandler func(req openai.ChatCompletionRequest) (status int, content string)

// ChatServer is a fake chat completion endpoint
type ChatServer struct {
	*httptest.Server

	mu       sync.Mutex
	Requests []openai.ChatCompletionRequest
	Headers  []http.Header
}

// NewChatServer starts a fake endpoint serving /chat/completions. It is
// closed when the test ends.
func NewChatServer(t *testing.T, handler ChatHandler) *ChatServer {
	t.Helper()

	s := &ChatServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.Requests = append(s.Requests, req)
		s.Headers = append(s.Headers, r.Header.Clone())
		s.mu.Unlock()

		status, content := handler(req)
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, content)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleAssistant,
						Content: content,
					},
					FinishReason: openai.FinishReasonStop,
				},
			},
		})
	}))
	t.Cleanup(s.Close)

	return s
}

// EchoTranslations answers every "id: text" line of the user message with
// "id: IT text"
func EchoTranslations(req openai.ChatCompletionRequest) (int, string) {
	var lines []string
	for _, msg := range req.Messages {
		if msg.Role != openai.ChatMessageRoleUser {
			continue
		}
		for _, line := range strings.Split(msg.Content, "\n") {
			id, text, ok := strings.Cut(line, ": ")
			if !ok {
				continue
			}
			if _, err := strconv.Atoi(id); err != nil {
				continue
			}
			lines = append(lines, id+": IT "+text)
		}
	}
	return http.StatusOK, strings.Join(lines, "\n")
}

// RequestCount returns the number of chat requests received so far
func (s *ChatServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}
