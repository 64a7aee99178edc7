// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package store

import (
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/streamvault/streamvault/internal/models"
)

// AppendView adds one event to the append-only view log. Events are never
// updated or deleted; derived aggregates are recomputed from this log.
func (s *Store) AppendView(event models.ViewEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal view event: %w", err)
	}

	// Nanosecond timestamp plus a random suffix keeps keys unique under
	// concurrent appends for the same asset.
	key := viewKeyPrefix + event.MediaID + ":" +
		strconv.FormatInt(event.ViewedAt.UnixNano(), 10) + ":" +
		uuid.New().String()[:8]

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("append view event: %w", err)
	}
	return nil
}

// ViewsForMedia returns all view events logged for the given asset.
func (s *Store) ViewsForMedia(mediaID string) ([]models.ViewEvent, error) {
	var events []models.ViewEvent

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(viewKeyPrefix + mediaID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var event models.ViewEvent
				if err := json.Unmarshal(val, &event); err != nil {
					return err
				}
				events = append(events, event)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read view log: %w", err)
	}
	return events, nil
}
