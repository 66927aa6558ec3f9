package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StorageService defines the interface for storage operations
type StorageService interface {
	Save(ctx context.Context, record Record) error
	Update(ctx context.Context, record Record) error
	GetById(ctx context.Context, recordClass string, id string) (Record, error)
	GetAll(ctx context.Context, recordClass string) ([]Record, error)
	FindByQuery(ctx context.Context, recordClass string, query Query) ([]Record, error)
	FindSingleByQuery(ctx context.Context, recordClass string, query Query) (Record, error)
}

// ErrRecordNotFound is returned by storage implementations when no record matches
var ErrRecordNotFound = fmt.Errorf("record not found")

// ErrDuplicateRecord is returned by Save when a record with the same id already exists
var ErrDuplicateRecord = fmt.Errorf("duplicate record")

// Record represents a base record interface
type Record interface {
	GetId() string
	SetId(id string)
	GetType() string
	GetTags() map[string]string
	GetTag(key string) (string, bool)
	SetTag(key, value string)
	GetCreatedAt() time.Time
	ToJSON() ([]byte, error)
	FromJSON(data []byte) error
}

// BaseRecord provides a base implementation of Record
type BaseRecord struct {
	ID        string            `json:"id"`
	Type      string            `json:"_type"`
	Tags      map[string]string `json:"_tags,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewBaseRecord creates a new BaseRecord
func NewBaseRecord(recordType string) *BaseRecord {
	return &BaseRecord{
		ID:        uuid.New().String(),
		Type:      recordType,
		Tags:      make(map[string]string),
		CreatedAt: time.Now(),
	}
}

func (r *BaseRecord) GetId() string {
	return r.ID
}

func (r *BaseRecord) SetId(id string) {
	r.ID = id
}

func (r *BaseRecord) GetType() string {
	return r.Type
}

func (r *BaseRecord) GetTags() map[string]string {
	if r.Tags == nil {
		r.Tags = make(map[string]string)
	}
	return r.Tags
}

func (r *BaseRecord) GetTag(key string) (string, bool) {
	if r.Tags == nil {
		return "", false
	}
	value, exists := r.Tags[key]
	return value, exists
}

func (r *BaseRecord) SetTag(key, value string) {
	if r.Tags == nil {
		r.Tags = make(map[string]string)
	}
	r.Tags[key] = value
}

func (r *BaseRecord) GetCreatedAt() time.Time {
	return r.CreatedAt
}

func (r *BaseRecord) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

func (r *BaseRecord) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}

// Query represents a storage query over record tags
type Query struct {
	// Simple tag equality queries
	Equal map[string]string `json:"equal,omitempty"`

	// Pagination
	Limit int `json:"limit,omitempty"`
}

// NewQuery creates a new empty query
func NewQuery() *Query {
	return &Query{Equal: make(map[string]string)}
}

// WithTag adds a tag equality condition to the query
func (q *Query) WithTag(key, value string) *Query {
	if q.Equal == nil {
		q.Equal = make(map[string]string)
	}
	q.Equal[key] = value
	return q
}

// WithLimit sets the query limit
func (q *Query) WithLimit(limit int) *Query {
	q.Limit = limit
	return q
}

// Matches reports whether a record satisfies all tag conditions of the query
func (q *Query) Matches(record Record) bool {
	for key, want := range q.Equal {
		got, ok := record.GetTag(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}
