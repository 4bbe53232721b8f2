package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func newTestTerminal(t *testing.T) (*Terminal, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	term, err := NewTerminal(&buf, "http://localhost:5000")
	require.NoError(t, err)
	return term, &buf
}

func TestTerminal_FlushPrintsLatestViewOnce(t *testing.T) {
	term, buf := newTestTerminal(t)
	ctx := context.Background()

	first := (&domain.Cart{Items: []domain.LineItem{{ProductID: "1", Name: "Mug", Price: 10, Currency: "EUR", Quantity: 1}}}).View()
	second := (&domain.Cart{Items: []domain.LineItem{{ProductID: "1", Name: "Mug", Price: 10, Currency: "EUR", Quantity: 2}}}).View()

	term.RenderCart(ctx, first)
	term.RenderCart(ctx, second)
	assert.Empty(t, buf.String())

	require.NoError(t, term.Flush())
	out := buf.String()
	assert.Contains(t, out, "Mug")
	assert.Contains(t, out, "2 item(s), total 20.00 EUR")
	assert.NotContains(t, out, "1 item(s)")

	buf.Reset()
	require.NoError(t, term.Flush())
	assert.Empty(t, buf.String())
}

func TestTerminal_EmptyCart(t *testing.T) {
	term, buf := newTestTerminal(t)

	term.RenderCart(context.Background(), (&domain.Cart{}).View())
	require.NoError(t, term.Flush())

	assert.Equal(t, "Cart is empty\n", buf.String())
}

func TestTerminal_Notify(t *testing.T) {
	term, buf := newTestTerminal(t)
	term.Notify(context.Background(), "Mug added to cart")
	assert.Equal(t, "* Mug added to cart\n", buf.String())
}

func TestTerminal_NavigateResolvesRelative(t *testing.T) {
	term, buf := newTestTerminal(t)
	ctx := context.Background()

	require.NoError(t, term.Navigate(ctx, "/checkout/success?session_id=s1"))
	require.NoError(t, term.Navigate(ctx, "https://pay.example.com/c/s1"))

	assert.Equal(t, []string{
		"http://localhost:5000/checkout/success?session_id=s1",
		"https://pay.example.com/c/s1",
	}, term.Visited())
	assert.Contains(t, buf.String(), "-> http://localhost:5000/checkout/success?session_id=s1\n")
}

func TestTerminal_Transcript(t *testing.T) {
	term, buf := newTestTerminal(t)
	ctx := context.Background()

	term.Append(ctx, domain.ChatMessage{Sender: domain.SenderUser, Text: "hello"})
	term.ShowTyping(ctx)
	term.ShowTyping(ctx)
	term.HideTyping(ctx)
	term.HideTyping(ctx)
	term.Append(ctx, domain.ChatMessage{Sender: domain.SenderBot, Text: "hi"})

	assert.Equal(t, "you> hello\nbot is typing...\r\033[Kbot> hi\n", buf.String())
}
