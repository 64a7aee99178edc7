// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/streamvault/streamvault/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", true)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetMedia(t *testing.T) {
	s := newTestStore(t)

	asset, err := s.CreateMedia("Demo Reel", models.MediaTypeVideo, "/storage/abc.mp4")
	if err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}
	if asset.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.GetMedia(asset.ID)
	if err != nil {
		t.Fatalf("GetMedia failed: %v", err)
	}
	if got.Title != "Demo Reel" || got.Type != models.MediaTypeVideo || got.FilePath != "/storage/abc.mp4" {
		t.Errorf("unexpected asset %+v", got)
	}
}

func TestGetMediaNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMedia("missing")
	if !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("expected ErrMediaNotFound, got %v", err)
	}
}

func TestListMedia(t *testing.T) {
	s := newTestStore(t)

	for _, title := range []string{"a", "b", "c"} {
		if _, err := s.CreateMedia(title, models.MediaTypeAudio, "/storage/"+title); err != nil {
			t.Fatal(err)
		}
	}

	assets, err := s.ListMedia()
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if len(assets) != 3 {
		t.Errorf("expected 3 assets, got %d", len(assets))
	}
}

func TestViewLogAppendAndRead(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		err := s.AppendView(models.ViewEvent{
			MediaID:  "m1",
			ViewerIP: "203.0.113.7",
			ViewedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("AppendView failed: %v", err)
		}
	}
	// A different asset's views must not bleed in.
	if err := s.AppendView(models.ViewEvent{MediaID: "m2", ViewerIP: "x", ViewedAt: now}); err != nil {
		t.Fatal(err)
	}

	events, err := s.ViewsForMedia("m1")
	if err != nil {
		t.Fatalf("ViewsForMedia failed: %v", err)
	}
	if len(events) != 5 {
		t.Errorf("expected 5 events, got %d", len(events))
	}
	for _, e := range events {
		if e.MediaID != "m1" {
			t.Errorf("unexpected media ID %q", e.MediaID)
		}
	}
}

func TestViewLogConcurrentAppends(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Identical timestamps must still produce distinct log entries.
			_ = s.AppendView(models.ViewEvent{MediaID: "m1", ViewerIP: "ip", ViewedAt: now})
		}()
	}
	wg.Wait()

	events, err := s.ViewsForMedia("m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 20 {
		t.Errorf("expected 20 events, got %d", len(events))
	}
}

func TestCreateUserAndLookup(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("Admin@Example.com", "bcrypt-hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Email != "admin@example.com" {
		t.Errorf("expected lowercased email, got %q", user.Email)
	}

	byEmail, err := s.GetUserByEmail("admin@example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, byEmail.ID)
	}
	if byEmail.HashedPassword != "bcrypt-hash" {
		t.Error("password hash must survive persistence")
	}

	byID, err := s.GetUser(user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("unexpected email %q", byID.Email)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateUser("admin@example.com", "h1"); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateUser("admin@example.com", "h2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetUserByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
