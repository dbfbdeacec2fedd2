package storage

import (
	"context"
	"sync"

	"bondingCurve/internal/model"
)

// DefaultMemoryCapacity bounds a MemoryLog created with a non-positive size.
const DefaultMemoryCapacity = 4096

// MemoryLog keeps the most recent events in a fixed-size ring buffer.
type MemoryLog struct {
	mu      sync.RWMutex
	buf     []model.EventRecord
	next    int
	full    bool
	dropped uint64
}

func NewMemoryLog(capacity int) *MemoryLog {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryLog{buf: make([]model.EventRecord, capacity)}
}

// Publish appends records, evicting the oldest once the buffer is full.
func (m *MemoryLog) Publish(_ context.Context, records []model.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		if m.full {
			m.dropped++
		}
		m.buf[m.next] = rec
		m.next = (m.next + 1) % len(m.buf)
		if m.next == 0 {
			m.full = true
		}
	}
	return nil
}

// Records returns the retained records, oldest first.
func (m *MemoryLog) Records() []model.EventRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.full {
		return append([]model.EventRecord(nil), m.buf[:m.next]...)
	}
	out := make([]model.EventRecord, 0, len(m.buf))
	out = append(out, m.buf[m.next:]...)
	return append(out, m.buf[:m.next]...)
}

// Since returns retained records of pool with Seq greater than seq.
func (m *MemoryLog) Since(pool string, seq uint64) []model.EventRecord {
	var out []model.EventRecord
	for _, rec := range m.Records() {
		if rec.Pool == pool && rec.Seq > seq {
			out = append(out, rec)
		}
	}
	return out
}

// Dropped reports how many records were evicted.
func (m *MemoryLog) Dropped() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dropped
}
