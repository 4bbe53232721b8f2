package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func newTestChatbot(sessions *memSessions, api *mockChatAPI) (*Chatbot, *recordingTranscript) {
	transcript := &recordingTranscript{}
	return NewChatbot(context.Background(), api, sessions, transcript, "uk", newTestLogger()), transcript
}

func TestNewChatbot_RestoresSession(t *testing.T) {
	sessions := &memSessions{token: "session_saved"}
	bot, _ := newTestChatbot(sessions, new(mockChatAPI))

	assert.Equal(t, "session_saved", bot.SessionID())
	assert.Equal(t, 0, sessions.saves)
}

func TestNewChatbot_GeneratesAndPersistsSession(t *testing.T) {
	sessions := &memSessions{}
	bot, _ := newTestChatbot(sessions, new(mockChatAPI))

	assert.True(t, strings.HasPrefix(bot.SessionID(), "session_"))
	assert.Equal(t, bot.SessionID(), sessions.token)
	assert.Equal(t, 1, sessions.saves)
}

func TestNewChatbot_StorageErrorStillGetsSession(t *testing.T) {
	sessions := &memSessions{readErr: errors.New("redis down")}
	bot, _ := newTestChatbot(sessions, new(mockChatAPI))

	assert.True(t, strings.HasPrefix(bot.SessionID(), "session_"))
}

func TestChatbot_Send_BlankIsNoop(t *testing.T) {
	api := new(mockChatAPI)
	bot, transcript := newTestChatbot(&memSessions{token: "s"}, api)

	bot.Send(context.Background(), "   ")

	assert.Empty(t, transcript.events)
	api.AssertNotCalled(t, "SendChatMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatbot_Send_Reply(t *testing.T) {
	api := new(mockChatAPI)
	api.On("SendChatMessage", mock.Anything, "s", domain.ChatRequest{Message: "hello", Language: "uk"}).
		Return(domain.ChatReply{Response: "hi there"}, nil)
	bot, transcript := newTestChatbot(&memSessions{token: "s"}, api)

	bot.Send(context.Background(), "hello")

	assert.Equal(t, []string{"user: hello", "typing", "typing done", "bot: hi there"}, transcript.events)
	assert.Equal(t, []domain.ChatMessage{
		{Sender: domain.SenderUser, Text: "hello"},
		{Sender: domain.SenderBot, Text: "hi there"},
	}, bot.Messages())
	api.AssertExpectations(t)
}

func TestChatbot_Send_MissingResponse(t *testing.T) {
	api := new(mockChatAPI)
	api.On("SendChatMessage", mock.Anything, "s", mock.Anything).
		Return(domain.ChatReply{Error: "quota exceeded"}, nil)
	bot, transcript := newTestChatbot(&memSessions{token: "s"}, api)

	bot.Send(context.Background(), "hello")

	assert.Equal(t, []string{"user: hello", "typing", "typing done", "bot: " + MsgChatNoResponse}, transcript.events)
}

func TestChatbot_Send_ConnectionError(t *testing.T) {
	api := new(mockChatAPI)
	api.On("SendChatMessage", mock.Anything, "s", mock.Anything).
		Return(domain.ChatReply{}, errors.New("dial tcp: connection refused"))
	bot, transcript := newTestChatbot(&memSessions{token: "s"}, api)

	bot.Send(context.Background(), "hello")

	assert.Equal(t, []string{"user: hello", "typing", "typing done", "bot: " + MsgChatConnectionError}, transcript.events)
	assert.Equal(t, "s", bot.SessionID())
}

func TestChatbot_Send_MissingResponseKeepsSession(t *testing.T) {
	sessions := &memSessions{token: "session_old"}
	api := new(mockChatAPI)
	api.On("SendChatMessage", mock.Anything, "session_old", mock.Anything).
		Return(domain.ChatReply{SessionID: "session_new", Error: "model overloaded"}, nil)
	bot, transcript := newTestChatbot(sessions, api)

	bot.Send(context.Background(), "hello")

	assert.Equal(t, "session_old", bot.SessionID())
	assert.Equal(t, "session_old", sessions.token)
	assert.Equal(t, 0, sessions.saves)
	assert.Equal(t, "bot: "+MsgChatNoResponse, transcript.events[len(transcript.events)-1])
}

func TestChatbot_Send_ReplacesSession(t *testing.T) {
	sessions := &memSessions{token: "session_old"}
	api := new(mockChatAPI)
	api.On("SendChatMessage", mock.Anything, "session_old", mock.Anything).
		Return(domain.ChatReply{Response: "ok", SessionID: "session_new"}, nil).Once()
	api.On("SendChatMessage", mock.Anything, "session_new", mock.Anything).
		Return(domain.ChatReply{Response: "ok again", SessionID: "session_new"}, nil).Once()
	bot, _ := newTestChatbot(sessions, api)
	ctx := context.Background()

	bot.Send(ctx, "first")
	assert.Equal(t, "session_new", bot.SessionID())
	assert.Equal(t, "session_new", sessions.token)

	bot.Send(ctx, "second")
	assert.Equal(t, 1, sessions.saves)
	api.AssertExpectations(t)
}

func TestChatbot_Send_Serialized(t *testing.T) {
	api := new(mockChatAPI)
	api.On("SendChatMessage", mock.Anything, "s", mock.Anything).
		Return(domain.ChatReply{Response: "pong"}, nil)
	bot, transcript := newTestChatbot(&memSessions{token: "s"}, api)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.Send(context.Background(), "ping")
		}()
	}
	wg.Wait()

	require.Len(t, transcript.events, 40)
	for i := 0; i < 40; i += 4 {
		assert.Equal(t, []string{"user: ping", "typing", "typing done", "bot: pong"}, transcript.events[i:i+4])
	}
}
