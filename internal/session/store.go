// Package session owns the trip-planning session documents: creation,
// preference submission, progress, and completion.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shreeshk9/group-trip-planner/internal/db"
)

// ErrSessionNotFound is returned when no document exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// ErrConflict is returned when a concurrent writer kept winning the
// optimistic update loop.
var ErrConflict = errors.New("session update conflict")

const (
	keyPrefix    = "session:"
	writeRetries = 5
)

// Store keeps live session documents in Redis and archives completed ones
// into Postgres. Redis WATCH makes every read-modify-write atomic per
// session key, so two participants submitting at once cannot lose an update.
type Store struct {
	rdb     *redis.Client
	archive db.Querier
}

// NewStore builds a store. The archive querier may be nil; completion then
// skips the Postgres copy.
func NewStore(rdb *redis.Client, archive db.Querier) *Store {
	return &Store{rdb: rdb, archive: archive}
}

func shortID() string {
	return uuid.NewString()[:8]
}

func key(id string) string {
	return keyPrefix + id
}

// Create starts a new session and returns the stored record.
func (s *Store) Create(ctx context.Context, creator string, expectedUsers int) (Record, error) {
	record := Record{
		SessionID:     shortID(),
		Creator:       creator,
		ExpectedUsers: expectedUsers,
		CreatedAt:     time.Now().UTC(),
		Status:        StatusCollecting,
		Users:         []Preference{},
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return Record{}, err
	}
	if err := s.rdb.Set(ctx, key(record.SessionID), raw, 0).Err(); err != nil {
		return Record{}, err
	}
	return record, nil
}

// Get loads a session document.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	raw, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrSessionNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// update applies fn to the current document under WATCH, retrying when a
// concurrent writer invalidates the transaction.
func (s *Store) update(ctx context.Context, id string, fn func(*Record) error) (Record, error) {
	var result Record

	for attempt := 0; attempt < writeRetries; attempt++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key(id)).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			if err != nil {
				return err
			}

			var record Record
			if err := json.Unmarshal(raw, &record); err != nil {
				return err
			}
			if err := fn(&record); err != nil {
				return err
			}

			updated, err := json.Marshal(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key(id), updated, 0)
				return nil
			})
			if err == nil {
				result = record
			}
			return err
		}, key(id))

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Record{}, err
		}
		return result, nil
	}
	return Record{}, ErrConflict
}

// SubmitPreference upserts one participant's record, matching existing
// entries by case-insensitive name. The preference is stamped with a fresh
// participant id and submission time.
func (s *Store) SubmitPreference(ctx context.Context, id string, pref Preference) (Record, error) {
	pref.UserID = shortID()
	pref.SubmittedAt = time.Now().UTC()

	return s.update(ctx, id, func(record *Record) error {
		for i, existing := range record.Users {
			if strings.EqualFold(existing.Name, pref.Name) {
				record.Users[i] = pref
				return nil
			}
		}
		record.Users = append(record.Users, pref)
		return nil
	})
}

// Progress reports how many participants have submitted against the
// expected count, with the submitted names.
func (s *Store) Progress(ctx context.Context, id string) (int, int, []string, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return 0, 0, nil, err
	}
	names := make([]string, 0, len(record.Users))
	for _, u := range record.Users {
		names = append(names, u.Name)
	}
	return len(record.Users), record.ExpectedUsers, names, nil
}

// MarkComplete stores the planning results on the session, stamps the
// completion time, and archives the finished document into Postgres so it
// survives Redis eviction.
func (s *Store) MarkComplete(ctx context.Context, id string, results json.RawMessage) (Record, error) {
	record, err := s.update(ctx, id, func(record *Record) error {
		now := time.Now().UTC()
		record.Status = StatusCompleted
		record.Results = results
		record.CompletedAt = &now
		return nil
	})
	if err != nil {
		return Record{}, err
	}

	if s.archive != nil {
		document, err := json.Marshal(record)
		if err != nil {
			return Record{}, err
		}
		_, err = s.archive.Exec(ctx, `
			INSERT INTO completed_sessions (id, document, completed_at)
			VALUES ($1,$2,$3)
			ON CONFLICT (id) DO UPDATE SET document=EXCLUDED.document, completed_at=EXCLUDED.completed_at
		`, record.SessionID, document, *record.CompletedAt)
		if err != nil {
			return Record{}, err
		}
	}
	return record, nil
}
