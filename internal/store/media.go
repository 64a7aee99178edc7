// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/streamvault/streamvault/internal/models"
)

// CreateMedia persists a new media asset and returns it with a generated ID
// and creation timestamp.
func (s *Store) CreateMedia(title string, mediaType models.MediaType, filePath string) (*models.MediaAsset, error) {
	asset := &models.MediaAsset{
		ID:        uuid.New().String(),
		Title:     title,
		Type:      mediaType,
		FilePath:  filePath,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(asset)
	if err != nil {
		return nil, fmt.Errorf("marshal media asset: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(mediaKeyPrefix+asset.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("store media asset: %w", err)
	}
	return asset, nil
}

// GetMedia looks up a media asset by ID. Returns ErrMediaNotFound if the ID
// is unknown.
func (s *Store) GetMedia(id string) (*models.MediaAsset, error) {
	var asset models.MediaAsset

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(mediaKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMediaNotFound
		}
		if err != nil {
			return fmt.Errorf("get media asset: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &asset)
		})
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// ListMedia returns all media assets in the catalog.
func (s *Store) ListMedia() ([]models.MediaAsset, error) {
	var assets []models.MediaAsset

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(mediaKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var asset models.MediaAsset
				if err := json.Unmarshal(val, &asset); err != nil {
					return err
				}
				assets = append(assets, asset)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list media assets: %w", err)
	}
	return assets, nil
}
