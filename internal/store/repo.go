package store

import (
	"context"
	"errors"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

// DocID is the fixed id of the progress document under each user.
const DocID = "progress"

var (
	// ErrNotFound is returned by Update when the document does not exist.
	ErrNotFound = errors.New("store: document not found")

	// ErrAbort rolls back a transaction without reporting an error.
	ErrAbort = errors.New("store: transaction aborted")
)

// DocumentStore is the persistence port for progress documents, keyed by
// (user id, DocID). Decision code never depends on it.
type DocumentStore interface {
	// Get returns the document and whether it exists.
	Get(ctx context.Context, userID string) (progress.Document, bool, error)

	// Set creates the document or overwrites it entirely.
	Set(ctx context.Context, userID string, doc progress.Document) error

	// Update writes only the patch fields. It returns ErrNotFound when the
	// document does not exist.
	Update(ctx context.Context, userID string, patch progress.Patch) error

	// Transact runs fn in a read-modify-write transaction. Returning nil
	// commits, returning ErrAbort rolls back silently, and any other error
	// rolls back and is returned.
	Transact(ctx context.Context, userID string, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the view of one user's document inside a transaction.
type Tx interface {
	Get(ctx context.Context) (progress.Document, bool, error)
	Set(ctx context.Context, doc progress.Document) error
	Update(ctx context.Context, patch progress.Patch) error
}

// Lister enumerates users that have a progress document.
type Lister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}
