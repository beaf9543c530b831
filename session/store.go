// Package session keeps per-session tool results (flight_options,
// hotel_options, itinerary_plan) for the lifetime of the process.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/va6996/tripplanner/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// State keys written by the trip pipeline.
const (
	KeyFlightOptions = "flight_options"
	KeyHotelOptions  = "hotel_options"
	KeyItineraryPlan = "itinerary_plan"
	KeySummary       = "trip_summary"
)

// ErrNotFound is returned when a session has no value under a key.
var ErrNotFound = errors.New("session state not found")

// StateEntry is one JSON value stored under (session, key).
type StateEntry struct {
	SessionID string `gorm:"primaryKey"`
	StateKey  string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

// Store is a gorm-backed session state store. With the default in-memory
// sqlite DSN nothing outlives the process.
type Store struct {
	db *gorm.DB
}

// NewStore opens the sqlite database at dsn and migrates the state table.
func NewStore(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	// A shared-cache memory database reports SQLITE_LOCKED to concurrent
	// writers instead of waiting, so all access goes through one connection.
	sqlDB.SetMaxOpenConns(1)
	return Open(db)
}

// Open wraps an existing connection.
func Open(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&StateEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session db: %w", err)
	}
	return &Store{db: db}, nil
}

// Put stores value as JSON, replacing any previous value under the key.
func (s *Store) Put(ctx context.Context, sessionID, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	entry := StateEntry{
		SessionID: sessionID,
		StateKey:  key,
		Value:     b,
		UpdatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "state_key"}},
		UpdateAll: true,
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	log.Debugf(ctx, "Session %s: stored %s (%d bytes)", sessionID, key, len(b))
	return nil
}

// Get decodes the value under key into out.
func (s *Store) Get(ctx context.Context, sessionID, key string, out interface{}) error {
	var entry StateEntry
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND state_key = ?", sessionID, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(entry.Value, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// Snapshot returns every value of a session keyed by state key.
func (s *Store) Snapshot(ctx context.Context, sessionID string) (map[string]json.RawMessage, error) {
	var entries []StateEntry
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("state_key").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	out := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		out[e.StateKey] = json.RawMessage(e.Value)
	}
	return out, nil
}

// Clear drops all state of a session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&StateEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
