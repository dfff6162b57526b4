// Package mirror keeps best-effort local copies of progress documents for
// instant bootstrap reads. The remote store stays authoritative: a mirror
// is written only after a successful remote write, and its failures never
// fail the operation that triggered them.
package mirror

import (
	"context"
	"sync"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

// Subscriber receives the post-write snapshot of a document.
type Subscriber interface {
	Name() string
	Save(ctx context.Context, userID string, doc progress.Document) error
}

// Loader reads a mirrored snapshot.
type Loader interface {
	Load(ctx context.Context, userID string) (progress.Document, bool, error)
}

// Publisher fans snapshots out to its subscribers. A nil *Publisher
// publishes nothing.
type Publisher struct {
	mu   sync.RWMutex
	subs []Subscriber
	log  *logger.Logger
}

func NewPublisher(log *logger.Logger, subs ...Subscriber) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{subs: subs, log: log.With("service", "mirror")}
}

// Subscribe adds s to the observer list.
func (p *Publisher) Subscribe(s Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, s)
}

// Publish delivers doc to every subscriber in registration order.
func (p *Publisher) Publish(ctx context.Context, userID string, doc progress.Document) {
	if p == nil {
		return
	}
	p.mu.RLock()
	subs := make([]Subscriber, len(p.subs))
	copy(subs, p.subs)
	p.mu.RUnlock()

	for _, s := range subs {
		if err := s.Save(ctx, userID, doc); err != nil {
			p.log.Warn("mirror write failed", "subscriber", s.Name(), "user_id", userID, "error", err)
		}
	}
}

// Memory keeps the latest snapshot per user in process.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]progress.Document
}

var (
	_ Subscriber = (*Memory)(nil)
	_ Loader     = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]progress.Document)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Save(_ context.Context, userID string, doc progress.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[userID] = doc
	return nil
}

func (m *Memory) Load(_ context.Context, userID string) (progress.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[userID]
	return doc, ok, nil
}
