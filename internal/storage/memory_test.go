package storage

import (
	"context"
	"strings"
	"testing"
)

func TestMemStorageRoundTrip(t *testing.T) {
	s := NewMemStorage()
	ctx := context.Background()

	err := s.Upload(ctx, "a-key.mp3", strings.NewReader("payload"), 7, "audio/mpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !s.Has("a-key.mp3") {
		t.Error("object missing after upload")
	}
	if got := s.PublicURL("a-key.mp3"); got != "mem://a-key.mp3" {
		t.Errorf("PublicURL = %q", got)
	}
}

func TestRemoveMissingKeyIsSuccess(t *testing.T) {
	s := NewMemStorage()

	if err := s.Remove(context.Background(), "never-uploaded.mp3"); err != nil {
		t.Errorf("removing a missing key must succeed, got %v", err)
	}
}

func TestRemoveMultipleKeys(t *testing.T) {
	s := NewMemStorage()
	ctx := context.Background()

	for _, k := range []string{"one", "two"} {
		if err := s.Upload(ctx, k, strings.NewReader("x"), 1, ""); err != nil {
			t.Fatalf("upload %s: %v", k, err)
		}
	}

	if err := s.Remove(ctx, "one", "missing", "two"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, %d objects remain", s.Len())
	}
}

func TestCallCounting(t *testing.T) {
	s := NewMemStorage()
	ctx := context.Background()

	_ = s.Upload(ctx, "k", strings.NewReader("x"), 1, "")
	_ = s.Remove(ctx, "k")
	_ = s.Remove(ctx, "k")

	up, rm := s.Calls()
	if up != 1 || rm != 2 {
		t.Errorf("Calls() = %d, %d; want 1, 2", up, rm)
	}
}
