// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/domain/ports/adapter"
	"evalplanner-jobs/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memJobRepo is a small in-memory implementation used by unit tests. Claim
// mutual exclusion is provided by the mutex, mirroring the row lock the real
// store uses.
type memJobRepo struct {
	mu        sync.Mutex
	store     map[int64]*model.Job
	nextID    int64
	insertErr error
	findErr   error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[int64]*model.Job)}
}

func (m *memJobRepo) Insert(ctx context.Context, tx repository.Tx, job *model.Job) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	job.ID = m.nextID
	job.CreatedAt = time.Now()
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Job, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) ClaimNextPending(ctx context.Context) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.store))
	for id := range m.store {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if m.store[id].Status == model.JobStatusPending {
			m.store[id].Status = model.JobStatusProcessing
			cp := *m.store[id]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memJobRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id int64, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok || j.Status != model.JobStatusProcessing {
		return domain.ErrNotFound
	}
	now := time.Now()
	j.Status = model.JobStatusCompleted
	j.Result = result
	j.CompletedAt = &now
	return nil
}

func (m *memJobRepo) MarkFailed(ctx context.Context, tx repository.Tx, id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok || j.Status != model.JobStatusProcessing {
		return domain.ErrNotFound
	}
	now := time.Now()
	j.Status = model.JobStatusFailed
	j.Error = errMsg
	j.CompletedAt = &now
	return nil
}

func (m *memJobRepo) DeleteTerminalOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, j := range m.store {
		if j.Status.IsTerminal() && j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

// memSettingsRepo backs settings tests with a plain map.
type memSettingsRepo struct {
	mu     sync.RWMutex
	store  map[string]string
	getErr error
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{store: make(map[string]string)}
}

func (m *memSettingsRepo) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memSettingsRepo) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

// mockMailAdapter records every message handed to it.
type mockMailAdapter struct {
	mu      sync.Mutex
	Sent    []adapter.MailMessage
	sendErr error
}

func (m *mockMailAdapter) Send(ctx context.Context, msg adapter.MailMessage) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}
