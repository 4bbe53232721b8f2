package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// --- Mock Repositories ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Load(ctx context.Context) ([]domain.LineItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, items []domain.LineItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

type memSessions struct {
	mu      sync.Mutex
	token   string
	readErr error
	saves   int
}

func (s *memSessions) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return "", s.readErr
	}
	if s.token == "" {
		return "", apperrors.NotFound("chat session", "test")
	}
	return s.token, nil
}

func (s *memSessions) SaveToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.saves++
	return nil
}

// --- Mock APIs ---

type mockCheckoutAPI struct {
	mock.Mock
}

func (m *mockCheckoutAPI) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.CheckoutResult), args.Error(1)
}

type mockChatAPI struct {
	mock.Mock
}

func (m *mockChatAPI) SendChatMessage(ctx context.Context, sessionID string, req domain.ChatRequest) (domain.ChatReply, error) {
	args := m.Called(ctx, sessionID, req)
	return args.Get(0).(domain.ChatReply), args.Error(1)
}

type mockProductLookup struct {
	mock.Mock
}

func (m *mockProductLookup) LookupProducts(ctx context.Context, productID domain.ProductID) ([]domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type mockPaymentRedirector struct {
	mock.Mock
}

func (m *mockPaymentRedirector) Redirect(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// --- Recorders ---

type recordingRenderer struct {
	mu    sync.Mutex
	views []domain.CartView
}

func (r *recordingRenderer) RenderCart(_ context.Context, view domain.CartView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *recordingRenderer) last() domain.CartView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[len(r.views)-1]
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

type recordingNavigator struct {
	urls []string
	err  error
}

func (n *recordingNavigator) Navigate(_ context.Context, url string) error {
	n.urls = append(n.urls, url)
	return n.err
}

// recordingTranscript logs every call as an event string in order.
type recordingTranscript struct {
	mu     sync.Mutex
	events []string
}

func (t *recordingTranscript) Append(_ context.Context, msg domain.ChatMessage) {
	t.record(fmt.Sprintf("%s: %s", msg.Sender, msg.Text))
}

func (t *recordingTranscript) ShowTyping(context.Context) { t.record("typing") }
func (t *recordingTranscript) HideTyping(context.Context) { t.record("typing done") }

func (t *recordingTranscript) record(e string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: "1", Name: "Mug", Price: 10, Currency: "EUR", Quantity: 2},
		{ProductID: "2", Name: "Tee", Price: 5, Currency: "EUR", Quantity: 1},
	}
}

// newTestStore returns a store over a mock repository that loads items and
// accepts every save.
func newTestStore(items []domain.LineItem) (*CartStore, *mockCartRepository, *recordingRenderer, *recordingNotifier) {
	repo := new(mockCartRepository)
	if items == nil {
		repo.On("Load", mock.Anything).Return(nil, apperrors.NotFound("cart", "test:cart"))
	} else {
		repo.On("Load", mock.Anything).Return(items, nil)
	}
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	renderer := &recordingRenderer{}
	notifier := &recordingNotifier{}
	store := NewCartStore(context.Background(), repo, renderer, notifier, newTestLogger())
	return store, repo, renderer, notifier
}
