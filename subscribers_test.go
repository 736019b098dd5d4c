package pressfront

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupTestSubscribers(t *testing.T) *SubscriberStore {
	t.Helper()
	s, err := NewSubscriberStore(filepath.Join(t.TempDir(), "data", "subscribers.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSubscriberAddAndList(t *testing.T) {
	s := setupTestSubscribers(t)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	created, err := s.Add(ctx, Subscriber{Email: "Reader@Example.com", Source: "/blog", CreatedAt: first})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !created {
		t.Fatal("expected new subscriber to be created")
	}
	if _, err := s.Add(ctx, Subscriber{Email: "second@example.com", CreatedAt: first.Add(time.Hour)}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	subs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(subs))
	}
	if subs[0].Email != "second@example.com" {
		t.Errorf("expected newest first, got %q", subs[0].Email)
	}
	if subs[1].Email != "reader@example.com" {
		t.Errorf("expected lower-cased email, got %q", subs[1].Email)
	}
	if subs[1].Source != "/blog" || !subs[1].CreatedAt.Equal(first) {
		t.Errorf("unexpected subscriber fields: %+v", subs[1])
	}
}

func TestSubscriberAddDuplicate(t *testing.T) {
	s := setupTestSubscribers(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, Subscriber{Email: "dup@example.com"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	created, err := s.Add(ctx, Subscriber{Email: " DUP@example.com "})
	if err != nil {
		t.Fatalf("duplicate Add failed: %v", err)
	}
	if created {
		t.Error("expected duplicate to report created=false")
	}
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
}

func TestSubscriberAddEmpty(t *testing.T) {
	s := setupTestSubscribers(t)
	if _, err := s.Add(context.Background(), Subscriber{Email: "  "}); err == nil {
		t.Fatal("expected error for empty email")
	}
}
