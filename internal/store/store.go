// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package store persists the media catalog, the append-only view log, and
// admin accounts in an embedded Badger database.
//
// Key layout:
//
//	media:<id>                      MediaAsset JSON
//	view:<media id>:<nanos>:<rand>  ViewEvent JSON
//	user:id:<id>                    AdminUser JSON
//	user:email:<email>              user id
package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Sentinel errors returned by store lookups.
var (
	ErrMediaNotFound = errors.New("media asset not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
)

const (
	mediaKeyPrefix     = "media:"
	viewKeyPrefix      = "view:"
	userIDKeyPrefix    = "user:id:"
	userEmailKeyPrefix = "user:email:"
)

// Store wraps a Badger database with typed accessors for the StreamVault
// domain. Safe for concurrent use; Badger provides transaction isolation.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at the given path. With inMemory set the
// store keeps everything in RAM, which tests rely on.
func Open(path string, inMemory bool) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
