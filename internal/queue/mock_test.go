package queue

import (
	"context"
	"sync"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

// mockStore is an in-memory DocumentStore that counts calls.
type mockStore struct {
	mu       sync.Mutex
	docs     map[string]progress.Document
	gets     int
	sets     int
	updates  int
	lastSet  progress.Document
	patches  []progress.Patch
	getErr   error
	writeErr error
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[string]progress.Document)}
}

func (m *mockStore) put(userID string, doc progress.Document) {
	m.docs[userID] = doc
}

func (m *mockStore) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets + m.updates
}

func (m *mockStore) Get(_ context.Context, userID string) (progress.Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return progress.Document{}, false, m.getErr
	}
	doc, ok := m.docs[userID]
	return doc, ok, nil
}

func (m *mockStore) Set(_ context.Context, userID string, doc progress.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.lastSet = doc
	m.docs[userID] = doc
	return nil
}

func (m *mockStore) Update(_ context.Context, userID string, patch progress.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.writeErr != nil {
		return m.writeErr
	}
	doc, ok := m.docs[userID]
	if !ok {
		return store.ErrNotFound
	}
	m.patches = append(m.patches, patch)
	m.docs[userID] = patch.Apply(doc)
	return nil
}

func (m *mockStore) Transact(ctx context.Context, userID string, fn func(ctx context.Context, tx store.Tx) error) error {
	return fn(ctx, &mockTx{m: m, userID: userID})
}

type mockTx struct {
	m      *mockStore
	userID string
}

func (t *mockTx) Get(ctx context.Context) (progress.Document, bool, error) {
	return t.m.Get(ctx, t.userID)
}

func (t *mockTx) Set(ctx context.Context, doc progress.Document) error {
	return t.m.Set(ctx, t.userID, doc)
}

func (t *mockTx) Update(ctx context.Context, patch progress.Patch) error {
	return t.m.Update(ctx, t.userID, patch)
}
