package render

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/utafrali/storefront/internal/domain"
)

// Terminal presents the storefront on a text stream. Cart views are
// coalesced: RenderCart records the latest view and Flush prints it, so a
// command that mutates the cart several times prints it once. Notices,
// navigation and chat output are written immediately.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	baseURL *url.URL
	pending *domain.CartView
	typing  bool
	visited []string
}

// NewTerminal creates a terminal writing to w. Relative navigation targets are
// resolved against baseURL.
func NewTerminal(w io.Writer, baseURL string) (*Terminal, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Terminal{w: w, baseURL: base}, nil
}

// RenderCart implements service.Renderer.
func (t *Terminal) RenderCart(_ context.Context, view domain.CartView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = &view
}

// Flush prints the most recent cart view, if one is pending.
func (t *Terminal) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil {
		return nil
	}
	view := *t.pending
	t.pending = nil
	return t.writeCart(view)
}

func (t *Terminal) writeCart(view domain.CartView) error {
	if view.Empty() {
		_, err := fmt.Fprintln(t.w, "Cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f %s\t%s\n",
			item.ProductID, item.Name, item.Quantity, item.Price, item.Currency,
			item.Subtotal().StringFixed(2),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(t.w, "%d item(s), total %s\n", view.TotalItems, view.FormattedTotal())
	return err
}

// Notify implements service.Notifier.
func (t *Terminal) Notify(_ context.Context, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "* %s\n", message)
}

// Navigate implements service.Navigator by printing the absolute target.
func (t *Terminal) Navigate(_ context.Context, target string) error {
	ref, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse navigation target %q: %w", target, err)
	}
	abs := t.baseURL.ResolveReference(ref).String()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.visited = append(t.visited, abs)
	_, err = fmt.Fprintf(t.w, "-> %s\n", abs)
	return err
}

// Visited returns every URL navigated to so far.
func (t *Terminal) Visited() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.visited...)
}

// Append implements service.Transcript.
func (t *Terminal) Append(_ context.Context, msg domain.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	label := "bot"
	if msg.Sender == domain.SenderUser {
		label = "you"
	}
	fmt.Fprintf(t.w, "%s> %s\n", label, strings.TrimSpace(msg.Text))
}

// ShowTyping implements service.Transcript.
func (t *Terminal) ShowTyping(context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.typing {
		return
	}
	t.typing = true
	fmt.Fprint(t.w, "bot is typing...")
}

// HideTyping implements service.Transcript. It erases the indicator line.
func (t *Terminal) HideTyping(context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.typing {
		return
	}
	t.typing = false
	fmt.Fprint(t.w, "\r\033[K")
}
