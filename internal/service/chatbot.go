package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// Bot messages used when the backend does not produce a reply.
const (
	MsgChatNoResponse      = "Sorry, something went wrong. Please try again later."
	MsgChatConnectionError = "Connection error. Please check your internet connection."
)

// DefaultChatLanguage is used when no language is configured.
const DefaultChatLanguage = "uk"

// NewSessionToken returns a fresh chat session token.
func NewSessionToken() string {
	return "session_" + uuid.NewString()
}

// Chatbot is the chat widget client. Sends are serialized so the transcript
// keeps request/response order.
type Chatbot struct {
	mu         sync.Mutex
	api        ChatAPI
	sessions   repository.SessionRepository
	transcript Transcript
	language   string
	logger     *slog.Logger

	sessionID string
	messages  []domain.ChatMessage
}

// NewChatbot creates a chatbot, restoring the session token from storage or
// generating and persisting a new one. A nil transcript is a no-op.
func NewChatbot(ctx context.Context, api ChatAPI, sessions repository.SessionRepository, transcript Transcript, language string, logger *slog.Logger) *Chatbot {
	if transcript == nil {
		transcript = nopTranscript{}
	}
	if language == "" {
		language = DefaultChatLanguage
	}

	b := &Chatbot{
		api:        api,
		sessions:   sessions,
		transcript: transcript,
		language:   language,
		logger:     logger,
	}
	b.sessionID = b.restoreSession(ctx)
	return b
}

func (b *Chatbot) restoreSession(ctx context.Context) string {
	token, err := b.sessions.Token(ctx)
	if err == nil && token != "" {
		return token
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		b.logger.WarnContext(ctx, "failed to read chat session, starting a new one",
			slog.String("error", err.Error()),
		)
	}

	token = NewSessionToken()
	b.saveSession(ctx, token)
	return token
}

func (b *Chatbot) saveSession(ctx context.Context, token string) {
	if err := b.sessions.SaveToken(ctx, token); err != nil {
		b.logger.ErrorContext(ctx, "failed to persist chat session",
			slog.String("error", err.Error()),
		)
	}
}

// SessionID returns the current session token.
func (b *Chatbot) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionID
}

// Messages returns a copy of the transcript so far.
func (b *Chatbot) Messages() []domain.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ChatMessage, len(b.messages))
	copy(out, b.messages)
	return out
}

// Send posts message and appends the reply to the transcript. A blank message
// is ignored. The typing indicator is shown for the duration of the request
// and hidden exactly once. Failures are logged and answered with a fixed bot
// message; they never reach the caller.
func (b *Chatbot) Send(ctx context.Context, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ctx = logger.WithSessionID(ctx, b.sessionID)
	log := logger.WithContext(ctx, b.logger)

	b.append(ctx, domain.SenderUser, message)
	b.transcript.ShowTyping(ctx)

	start := time.Now()
	reply, err := b.api.SendChatMessage(ctx, b.sessionID, domain.ChatRequest{
		Message:  message,
		Language: b.language,
	})
	metrics.ChatDuration.Observe(time.Since(start).Seconds())

	b.transcript.HideTyping(ctx)

	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		log.ErrorContext(ctx, "chat request failed",
			slog.String("code", apperrors.Code(err)),
			slog.String("error", err.Error()),
		)
		b.append(ctx, domain.SenderBot, MsgChatConnectionError)
		return
	}

	if reply.Response == "" {
		metrics.ChatRequests.WithLabelValues("fallback").Inc()
		log.WarnContext(ctx, "chat reply had no response", slog.String("error", reply.Error))
		b.append(ctx, domain.SenderBot, MsgChatNoResponse)
		return
	}

	// Only a reply that answered may move the conversation to a new session.
	if reply.SessionID != "" && reply.SessionID != b.sessionID {
		log.InfoContext(ctx, "chat session replaced", slog.String("new_session_id", reply.SessionID))
		b.sessionID = reply.SessionID
		b.saveSession(ctx, reply.SessionID)
	}

	metrics.ChatRequests.WithLabelValues("ok").Inc()
	b.append(ctx, domain.SenderBot, reply.Response)
}

func (b *Chatbot) append(ctx context.Context, sender domain.Sender, text string) {
	msg := domain.ChatMessage{Sender: sender, Text: text}
	b.messages = append(b.messages, msg)
	b.transcript.Append(ctx, msg)
}
