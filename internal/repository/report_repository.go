package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryReportRepository keeps the most recent reports in memory and evicts
// the oldest once capacity is reached.
type MemoryReportRepository struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	byID     map[string]*StoredReport
}

// NewMemoryReportRepository creates a bounded in-memory report store
func NewMemoryReportRepository(capacity int) *MemoryReportRepository {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryReportRepository{
		capacity: capacity,
		byID:     make(map[string]*StoredReport, capacity),
	}
}

// Save stores a copy of the report under a fresh ID
func (m *MemoryReportRepository) Save(ctx context.Context, report *StoredReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored := *report
	stored.ID = uuid.New().String()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Response.ID = stored.ID

	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.order) >= m.capacity {
		delete(m.byID, m.order[0])
		m.order = m.order[1:]
	}
	m.order = append(m.order, stored.ID)
	m.byID[stored.ID] = &stored

	report.ID = stored.ID
	report.Response.ID = stored.ID
	return stored.ID, nil
}

// Get retrieves a copy of a stored report
func (m *MemoryReportRepository) Get(ctx context.Context, id string) (*StoredReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.byID[id]
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	clone := *stored
	return &clone, nil
}

// History returns copies of the reports for a source, oldest first
func (m *MemoryReportRepository) History(ctx context.Context, source string) ([]*StoredReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var history []*StoredReport
	for _, id := range m.order {
		if stored := m.byID[id]; stored.Source == source {
			clone := *stored
			history = append(history, &clone)
		}
	}
	return history, nil
}

// Len returns the number of stored reports
func (m *MemoryReportRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
