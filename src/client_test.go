package bookforge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClient answers outline prompts with outline and everything else
// with a chapter body naming the requested title.
type fakeClient struct {
	mu      sync.Mutex
	outline string
	err     error
	calls   int
	prompts []string
}

func (f *fakeClient) SendMessage(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, user)
	if f.err != nil {
		return "", f.err
	}
	if system == outlineSystemPrompt {
		return f.outline, nil
	}
	start := strings.Index(user, "Chapter Title: ")
	line := user[start:]
	line = line[:strings.Index(line, "\n")]
	return "## Section\n\nBody for " + strings.TrimPrefix(line, "Chapter Title: "), nil
}

func TestCachedClientMemoizes(t *testing.T) {
	inner := &fakeClient{outline: `[{"title":"A","description":"a"}]`}
	c := NewCachedClient(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.SendMessage(ctx, outlineSystemPrompt, "same"); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", inner.calls)
	}
	if _, err := c.SendMessage(ctx, outlineSystemPrompt, "different"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected a second upstream call, got %d", inner.calls)
	}
	c.Forget()
	if _, err := c.SendMessage(ctx, outlineSystemPrompt, "same"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected cache miss after Forget, got %d calls", inner.calls)
	}
}

func TestCachedClientDoesNotCacheErrors(t *testing.T) {
	inner := &fakeClient{err: errors.New("down")}
	c := NewCachedClient(inner, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := c.SendMessage(context.Background(), "s", "u"); err == nil {
			t.Fatalf("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("errors should not be cached, got %d calls", inner.calls)
	}
}

func TestCacheKeySeparatesParts(t *testing.T) {
	if cacheKey("ab", "c") == cacheKey("a", "bc") {
		t.Fatalf("keys collide across part boundaries")
	}
}

func TestCachedClientDrop(t *testing.T) {
	inner := &fakeClient{outline: `[{"title":"A","description":"a"}]`}
	c := NewCachedClient(inner, time.Minute)
	ctx := context.Background()
	c.SendMessage(ctx, outlineSystemPrompt, "one")
	c.SendMessage(ctx, outlineSystemPrompt, "two")
	c.Drop(outlineSystemPrompt, "one")
	c.SendMessage(ctx, outlineSystemPrompt, "one")
	c.SendMessage(ctx, outlineSystemPrompt, "two")
	if inner.calls != 3 {
		t.Fatalf("expected only the dropped prompt to refetch, got %d calls", inner.calls)
	}
}
