package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Record is one append-only audit entry describing a dispatch attempt and
// its outcome. Records are never mutated or deleted.
type Record struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
	RequesterID string    `gorm:"size:64;index" json:"requester_id,omitempty"`
	Module      string    `gorm:"size:64;not null" json:"module"`
	Action      string    `gorm:"size:128;not null" json:"action"`
	Params      string    `gorm:"type:text" json:"params,omitempty"`
	Status      string    `gorm:"size:32;not null" json:"status"`
	Result      string    `gorm:"type:text" json:"result,omitempty"`
}

// Note is a free-form user-authored memory entry, independent of dispatch.
type Note struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Content   string    `gorm:"type:text;not null" json:"content"`
}

const (
	defaultRecordLimit = 20
	defaultNoteLimit   = 10
	maxReadLimit       = 500
)

// Store persists audit records and notes. Writes are serialized by the
// database; a write failure is propagated to the caller, never swallowed,
// since losing audit entries breaks the traceability guarantee.
type Store struct {
	db *gorm.DB
}

// New migrates the audit tables and returns a store over db.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Record{}, &Note{}); err != nil {
		return nil, fmt.Errorf("audit: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Entry carries the optional fields of a log call.
type Entry struct {
	RequesterID string
	Params      map[string]any
	Result      string
}

// Log appends one record and returns its monotonically increasing id.
func (s *Store) Log(module, action, status string, entry Entry) (uint64, error) {
	var params string
	if len(entry.Params) > 0 {
		b, err := json.Marshal(entry.Params)
		if err != nil {
			return 0, fmt.Errorf("audit: encode params: %w", err)
		}
		params = string(b)
	}

	rec := Record{
		Timestamp:   time.Now().UTC(),
		RequesterID: entry.RequesterID,
		Module:      module,
		Action:      action,
		Params:      params,
		Status:      status,
		Result:      entry.Result,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("audit: write record: %w", err)
	}
	return rec.ID, nil
}

// Recent returns the most recent records, newest first. Ordering is by id,
// which is insertion-ordered and stable when timestamps collide.
func (s *Store) Recent(limit int) ([]Record, error) {
	var out []Record
	err := s.db.Order("id desc").Limit(clampLimit(limit, defaultRecordLimit)).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("audit: read records: %w", err)
	}
	return out, nil
}

// Count reports the total number of audit records.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("audit: count records: %w", err)
	}
	return n, nil
}

// AddNote appends a note and returns its id.
func (s *Store) AddNote(content string) (uint64, error) {
	note := Note{Timestamp: time.Now().UTC(), Content: content}
	if err := s.db.Create(&note).Error; err != nil {
		return 0, fmt.Errorf("audit: write note: %w", err)
	}
	return note.ID, nil
}

// RecentNotes returns the most recent notes, newest first.
func (s *Store) RecentNotes(limit int) ([]Note, error) {
	var out []Note
	err := s.db.Order("id desc").Limit(clampLimit(limit, defaultNoteLimit)).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("audit: read notes: %w", err)
	}
	return out, nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxReadLimit {
		return maxReadLimit
	}
	return limit
}
