// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package encoder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cropwise/internal/metrics"
)

// Key layout: encoder:<field>:<zero-padded code> -> JSON Extension.
const extensionKeyPrefix = "encoder:"

// BadgerStore persists encoder extensions in BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB directory at path.
// An empty path opens an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for encoder: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an existing BadgerDB handle.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func extensionKey(field string, code int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", extensionKeyPrefix, field, code))
}

// Append stores ext. Writing the same value again is a no-op. A slot that
// holds a different value was left behind by an older artifact and is
// overwritten, since the live table owns every code it hands out.
func (s *BadgerStore) Append(ext Extension) error {
	data, err := json.Marshal(ext)
	if err != nil {
		return fmt.Errorf("marshal extension: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := extensionKey(ext.Field, ext.Code)
		item, err := txn.Get(key)
		switch {
		case err == nil:
			var stored Extension
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err == nil && stored == ext {
				return nil
			}
			metrics.EncoderStoreOverwrites.Inc()
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("get extension: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set extension: %w", err)
		}
		return nil
	})
}

// Delete removes the slots of exts. Missing keys are ignored.
func (s *BadgerStore) Delete(exts ...Extension) error {
	if len(exts) == 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, ext := range exts {
			if err := txn.Delete(extensionKey(ext.Field, ext.Code)); err != nil {
				return fmt.Errorf("delete extension %s/%d: %w", ext.Field, ext.Code, err)
			}
		}
		return nil
	})
}

// Load returns every stored extension in key order.
func (s *BadgerStore) Load() ([]Extension, error) {
	var exts []Extension

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(extensionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var ext Extension
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &ext)
			}); err != nil {
				return fmt.Errorf("decode extension %s: %w", item.Key(), err)
			}
			if err := checkKey(string(item.Key()), ext); err != nil {
				return err
			}
			exts = append(exts, ext)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exts, nil
}

// checkKey verifies the key agrees with the stored payload.
func checkKey(key string, ext Extension) error {
	rest := strings.TrimPrefix(key, extensionKeyPrefix)
	idx := strings.LastIndexByte(rest, ':')
	if idx < 0 {
		return fmt.Errorf("malformed extension key %q", key)
	}
	code, err := strconv.Atoi(rest[idx+1:])
	if err != nil {
		return fmt.Errorf("malformed extension key %q: %w", key, err)
	}
	if rest[:idx] != ext.Field || code != ext.Code {
		return fmt.Errorf("extension key %q does not match payload %s/%d", key, ext.Field, ext.Code)
	}
	return nil
}

// RunGC runs value log garbage collection until nothing is left to rewrite.
func (s *BadgerStore) RunGC(discardRatio float64) error {
	metrics.EncoderStoreGCRuns.Inc()
	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
