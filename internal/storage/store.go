// Package storage provides the persistent key-value store behind FamilySync.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akilaweerasekara/Home-Inventory/internal/metrics"
	"github.com/akilaweerasekara/Home-Inventory/internal/models"
)

// Storage keys. The currentUser and activities keys are reserved: nothing
// writes them, but Clear removes them along with the rest.
const (
	KeyUsers       = "familySync_users_v2"
	KeyItems       = "familySync_items_v2"
	KeyCurrentUser = "familySync_currentUser_v2"
	KeyActivities  = "familySync_activities_v2"

	// PhotoKeyPrefix prefixes the key of every stored photo blob.
	PhotoKeyPrefix = "familySync_photo_"
)

// ErrQuotaExceeded is returned by providers when a write would exceed
// their size limit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Provider defines the key-value backend.
// This abstraction allows swapping backends (SQLite, in-memory, ...)
// without changing the household service.
type Provider interface {
	// Get returns the value stored under key.
	// ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the provider.
	Close() error
}

// Lister is implemented by providers that can enumerate their keys.
type Lister interface {
	// Keys returns every stored key with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Store loads and saves JSON documents through a Provider.
//
// Load never fails: corrupt or unreadable data is reported as absent so the
// caller can fall back to defaults. Save failures are returned as storage
// errors but are never fatal to the caller.
type Store struct {
	provider Provider
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a Store over provider. logger and m may be nil.
func New(provider Provider, logger *slog.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{provider: provider, logger: logger, metrics: m}
}

// Load decodes the document under key into v.
// It returns false when the key is absent, unreadable or does not decode
// into v; the contents of v are unspecified in that case.
func (s *Store) Load(ctx context.Context, key string, v any) bool {
	data, ok, err := s.provider.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Load failed", "key", key, "error", err)
		return false
	}
	if !ok || len(data) == 0 {
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("Load found corrupt data", "key", key, "error", err)
		return false
	}
	return true
}

// Save encodes v as JSON and stores it under key.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return models.NewStorageError(err, "failed to encode %s", key)
	}
	return s.write(ctx, key, data)
}

// SaveBlob stores raw bytes under key.
func (s *Store) SaveBlob(ctx context.Context, key string, data []byte) error {
	return s.write(ctx, key, data)
}

// LoadBlob returns the raw bytes under key.
func (s *Store) LoadBlob(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.provider.Get(ctx, key)
	if err != nil {
		return nil, false, models.NewStorageError(err, "failed to read %s", key)
	}
	return data, ok, nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.provider.Delete(ctx, key)
	s.metrics.ObserveWrite(metricKey(key), err)
	if err != nil {
		return models.NewStorageError(err, "failed to delete %s", key)
	}
	return nil
}

// Clear removes every FamilySync collection key, and every photo blob when
// the provider implements Lister. The next load reseeds.
func (s *Store) Clear(ctx context.Context) error {
	keys := []string{KeyUsers, KeyItems, KeyCurrentUser, KeyActivities}

	var errs []error
	if lister, ok := s.provider.(Lister); ok {
		photos, err := lister.Keys(ctx, PhotoKeyPrefix)
		if err != nil {
			errs = append(errs, models.NewStorageError(err, "failed to list photos"))
		}
		keys = append(keys, photos...)
	}

	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		s.logger.Info("Storage cleared", "keys", len(keys))
	}
	return errors.Join(errs...)
}

// Close closes the provider.
func (s *Store) Close() error {
	return s.provider.Close()
}

func (s *Store) write(ctx context.Context, key string, data []byte) error {
	err := s.provider.Set(ctx, key, data)
	s.metrics.ObserveWrite(metricKey(key), err)
	if err != nil {
		s.logger.Error("Save failed", "key", key, "bytes", len(data), "error", err)
		return models.NewStorageError(err, "failed to save %s", key)
	}
	s.logger.Debug("Saved", "key", key, "bytes", len(data))
	return nil
}

// PhotoKey returns the storage key for a photo blob ID.
func PhotoKey(id string) string {
	return fmt.Sprintf("%s%s", PhotoKeyPrefix, id)
}

// metricKey folds every photo key into one label value.
func metricKey(key string) string {
	if strings.HasPrefix(key, PhotoKeyPrefix) {
		return "photo"
	}
	return key
}
