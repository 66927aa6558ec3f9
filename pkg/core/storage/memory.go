package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorageService is a simple in-memory implementation of StorageService
// intended for development and testing.
type MemoryStorageService struct {
	mu sync.RWMutex
	// records by class, then by id
	records map[string]map[string]Record
	// insertion order per class, for stable GetAll/FindByQuery results
	order map[string][]string
}

// NewMemoryStorageService creates a new in-memory storage service
func NewMemoryStorageService() *MemoryStorageService {
	return &MemoryStorageService{
		records: make(map[string]map[string]Record),
		order:   make(map[string][]string),
	}
}

func (s *MemoryStorageService) Save(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	class := record.GetType()
	byId, ok := s.records[class]
	if !ok {
		byId = make(map[string]Record)
		s.records[class] = byId
	}
	if _, exists := byId[record.GetId()]; exists {
		return fmt.Errorf("%w: %s %s", ErrDuplicateRecord, class, record.GetId())
	}
	byId[record.GetId()] = record
	s.order[class] = append(s.order[class], record.GetId())
	return nil
}

func (s *MemoryStorageService) Update(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	class := record.GetType()
	byId, ok := s.records[class]
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrRecordNotFound, class, record.GetId())
	}
	if _, exists := byId[record.GetId()]; !exists {
		return fmt.Errorf("%w: %s %s", ErrRecordNotFound, class, record.GetId())
	}
	byId[record.GetId()] = record
	return nil
}

func (s *MemoryStorageService) GetById(ctx context.Context, recordClass string, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byId, ok := s.records[recordClass]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrRecordNotFound, recordClass, id)
	}
	record, exists := byId[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s %s", ErrRecordNotFound, recordClass, id)
	}
	return record, nil
}

func (s *MemoryStorageService) GetAll(ctx context.Context, recordClass string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byId := s.records[recordClass]
	out := make([]Record, 0, len(byId))
	for _, id := range s.order[recordClass] {
		if record, ok := byId[id]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *MemoryStorageService) FindByQuery(ctx context.Context, recordClass string, query Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byId := s.records[recordClass]
	var out []Record
	for _, id := range s.order[recordClass] {
		record, ok := byId[id]
		if !ok || !query.Matches(record) {
			continue
		}
		out = append(out, record)
		if query.Limit > 0 && len(out) >= query.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStorageService) FindSingleByQuery(ctx context.Context, recordClass string, query Query) (Record, error) {
	limited := query
	limited.Limit = 1
	records, err := s.FindByQuery(ctx, recordClass, limited)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, recordClass)
	}
	return records[0], nil
}
