// Package profile owns the cached profile key of the persistent store. The
// cached profile is a derived view of the session user: session.Manager
// refreshes it on every session mutation, and backup import may replace it
// wholesale. Nothing else writes the key.
package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/store"
	"github.com/dmitrijs2005/medbook/internal/logging"
)

var emptyObject = json.RawMessage(`{}`)

type Cache struct {
	store  store.Store
	logger logging.Logger
}

func NewCache(s store.Store, logger logging.Logger) *Cache {
	return &Cache{store: s, logger: logger}
}

// With returns a cache bound to another view of the store, typically the
// transactional one passed to store.Update.
func (c *Cache) With(s store.Store) *Cache {
	return &Cache{store: s, logger: c.logger}
}

// Load returns the cached profile. An absent or unparsable value yields the
// zero record.
func (c *Cache) Load(ctx context.Context) (models.UserRecord, error) {
	var u models.UserRecord
	raw, err := c.store.Get(ctx, store.KeyProfile)
	if err != nil {
		return u, fmt.Errorf("load profile: %w", err)
	}
	if len(raw) == 0 {
		return u, nil
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		c.logger.Warn(ctx, "cached profile is unreadable, ignoring", "error", err)
		return models.UserRecord{}, nil
	}
	return u, nil
}

// Raw returns the cached profile as stored, or {} when it is absent or not
// valid JSON.
func (c *Cache) Raw(ctx context.Context) (json.RawMessage, error) {
	raw, err := c.store.Get(ctx, store.KeyProfile)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if len(raw) == 0 || !json.Valid(raw) {
		return emptyObject, nil
	}
	return json.RawMessage(raw), nil
}

// Save overwrites the cached view with u.
func (c *Cache) Save(ctx context.Context, u models.UserRecord) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := c.store.Set(ctx, store.KeyProfile, b); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Replace stores an already-validated JSON document as the cached profile.
func (c *Cache) Replace(ctx context.Context, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("replace profile: invalid JSON")
	}
	if err := c.store.Set(ctx, store.KeyProfile, raw); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, store.KeyProfile); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
