// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/streamvault/streamvault/internal/models"
)

// storedUser is the on-disk account record. It exists because the JSON tag
// on models.AdminUser hides the password hash from API responses, which
// would also strip it from persistence.
type storedUser struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u storedUser) toModel() *models.AdminUser {
	return &models.AdminUser{
		ID:             u.ID,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		CreatedAt:      u.CreatedAt,
	}
}

// CreateUser persists a new admin account. Returns ErrEmailTaken when the
// email is already registered. Emails are stored lowercased.
func (s *Store) CreateUser(email, hashedPassword string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	record := storedUser{
		ID:             uuid.New().String(),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userEmailKeyPrefix + email)
		if _, err := txn.Get(emailKey); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email: %w", err)
		}

		if err := txn.Set([]byte(userIDKeyPrefix+record.ID), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		return txn.Set(emailKey, []byte(record.ID))
	})
	if err != nil {
		return nil, err
	}
	return record.toModel(), nil
}

// GetUser looks up an admin account by ID.
func (s *Store) GetUser(id string) (*models.AdminUser, error) {
	var record storedUser

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userIDKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return nil, err
	}
	return record.toModel(), nil
}

// GetUserByEmail looks up an admin account by email.
func (s *Store) GetUserByEmail(email string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailKeyPrefix + email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user email index: %w", err)
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetUser(userID)
}
