package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

var (
	_ DocumentStore = (*Store)(nil)
	_ Lister        = (*Store)(nil)
)

func (s *Store) Get(ctx context.Context, userID string) (progress.Document, bool, error) {
	return getDocument(ctx, s.drv, s.drv.Dialect(), userID, false)
}

func (s *Store) Set(ctx context.Context, userID string, doc progress.Document) error {
	return setDocument(ctx, s.drv, s.drv.Dialect(), userID, doc)
}

func (s *Store) Update(ctx context.Context, userID string, patch progress.Patch) error {
	return updateDocument(ctx, s.drv, s.drv.Dialect(), userID, patch)
}

func (s *Store) Transact(ctx context.Context, userID string, fn func(ctx context.Context, tx Tx) error) error {
	etx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, &docTx{tx: etx, dialect: s.drv.Dialect(), userID: userID}); err != nil {
		if rerr := etx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: rollback: %v", err, rerr)
		}
		if errors.Is(err, ErrAbort) {
			return nil
		}
		return err
	}

	if err := etx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(s.drv.Dialect()).
		Select(columnUserID).
		From(entsql.Table(tableDocuments)).
		Where(entsql.EQ(columnDocID, DocID)).
		OrderBy(columnUserID).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// docTx binds a dialect transaction to one user's document.
type docTx struct {
	tx      dialect.Tx
	dialect string
	userID  string
}

// Get reads the document under a row lock. A missing document is first
// claimed with an empty placeholder row so that concurrent first writers
// queue on the same lock instead of overwriting each other's upserts. The
// placeholder disappears with the transaction unless it is written.
func (t *docTx) Get(ctx context.Context) (progress.Document, bool, error) {
	doc, ok, err := getDocument(ctx, t.tx, t.dialect, t.userID, true)
	if err != nil || ok {
		return doc, ok, err
	}

	claimed, err := claimDocument(ctx, t.tx, t.dialect, t.userID)
	if err != nil {
		return progress.Document{}, false, err
	}
	if claimed {
		return progress.Document{}, false, nil
	}
	// Another transaction created the row first; lock and read its version.
	return getDocument(ctx, t.tx, t.dialect, t.userID, true)
}

func (t *docTx) Set(ctx context.Context, doc progress.Document) error {
	return setDocument(ctx, t.tx, t.dialect, t.userID, doc)
}

func (t *docTx) Update(ctx context.Context, patch progress.Patch) error {
	return updateDocument(ctx, t.tx, t.dialect, t.userID, patch)
}

func documentKey(userID string) *entsql.Predicate {
	return entsql.And(
		entsql.EQ(columnUserID, userID),
		entsql.EQ(columnDocID, DocID),
	)
}

func getDocument(ctx context.Context, conn dialect.ExecQuerier, d, userID string, lock bool) (progress.Document, bool, error) {
	sel := entsql.Dialect(d).
		Select(columnCompleted, columnFailed, columnCurrent, columnCurrentAssignedDay, columnExamRecords).
		From(entsql.Table(tableDocuments)).
		Where(documentKey(userID))
	if lock && d == dialect.Postgres {
		sel.ForUpdate()
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := conn.Query(ctx, query, args, &rows); err != nil {
		return progress.Document{}, false, fmt.Errorf("query document: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return progress.Document{}, false, fmt.Errorf("query document: %w", err)
		}
		return progress.Document{}, false, nil
	}

	var completed, failed, current, assignedDay, exams sql.NullString
	if err := rows.Scan(&completed, &failed, &current, &assignedDay, &exams); err != nil {
		return progress.Document{}, false, fmt.Errorf("scan document: %w", err)
	}

	doc := decodeColumns(columns{
		Completed:          completed.String,
		Failed:             failed.String,
		Current:            current.String,
		CurrentAssignedDay: assignedDay.String,
		ExamRecords:        exams.String,
	})
	return doc, true, nil
}

func setDocument(ctx context.Context, conn dialect.ExecQuerier, d, userID string, doc progress.Document) error {
	cols, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(d).
		Insert(tableDocuments).
		Columns(columnUserID, columnDocID, columnCompleted, columnFailed, columnCurrent,
			columnCurrentAssignedDay, columnExamRecords, columnUpdatedAt).
		Values(userID, DocID, cols.Completed, cols.Failed, cols.Current,
			cols.CurrentAssignedDay, cols.ExamRecords, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns(columnUserID, columnDocID),
			entsql.ResolveWithNewValues(),
		).
		Query()

	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	return nil
}

// claimDocument inserts an empty row for userID unless one exists. It
// reports whether this call inserted it.
func claimDocument(ctx context.Context, conn dialect.ExecQuerier, d, userID string) (bool, error) {
	cols, err := encodeDocument(progress.Document{})
	if err != nil {
		return false, err
	}

	query, args := entsql.Dialect(d).
		Insert(tableDocuments).
		Columns(columnUserID, columnDocID, columnCompleted, columnFailed, columnCurrent,
			columnCurrentAssignedDay, columnExamRecords, columnUpdatedAt).
		Values(userID, DocID, cols.Completed, cols.Failed, cols.Current,
			cols.CurrentAssignedDay, cols.ExamRecords, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns(columnUserID, columnDocID),
			entsql.DoNothing(),
		).
		Query()

	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("claim document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim document: %w", err)
	}
	return n == 1, nil
}

func updateDocument(ctx context.Context, conn dialect.ExecQuerier, d, userID string, patch progress.Patch) error {
	upd := entsql.Dialect(d).
		Update(tableDocuments).
		Where(documentKey(userID))

	if patch.Completed != nil {
		v, err := encodeJSON(*patch.Completed)
		if err != nil {
			return fmt.Errorf("encode completed: %w", err)
		}
		upd.Set(columnCompleted, v)
	}
	if patch.Failed != nil {
		v, err := encodeJSON(*patch.Failed)
		if err != nil {
			return fmt.Errorf("encode failed: %w", err)
		}
		upd.Set(columnFailed, v)
	}
	if patch.Current != nil {
		v, err := encodeJSON(*patch.Current)
		if err != nil {
			return fmt.Errorf("encode current: %w", err)
		}
		upd.Set(columnCurrent, v)
	}
	if patch.CurrentAssignedDay != nil {
		upd.Set(columnCurrentAssignedDay, *patch.CurrentAssignedDay)
	}
	if patch.ExamRecords != nil {
		v, err := encodeJSON(*patch.ExamRecords)
		if err != nil {
			return fmt.Errorf("encode exam records: %w", err)
		}
		upd.Set(columnExamRecords, v)
	}
	upd.Set(columnUpdatedAt, time.Now().UTC())

	query, args := upd.Query()
	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// columns is the stored form of a Document, one JSON text per field.
type columns struct {
	Completed          string
	Failed             string
	Current            string
	CurrentAssignedDay string
	ExamRecords        string
}

func encodeDocument(doc progress.Document) (columns, error) {
	var (
		c   columns
		err error
	)
	if c.Completed, err = encodeJSON(doc.Completed); err != nil {
		return c, fmt.Errorf("encode completed: %w", err)
	}
	if c.Failed, err = encodeJSON(doc.Failed); err != nil {
		return c, fmt.Errorf("encode failed: %w", err)
	}
	if c.Current, err = encodeJSON(doc.Current); err != nil {
		return c, fmt.Errorf("encode current: %w", err)
	}
	if c.ExamRecords, err = encodeJSON(doc.ExamRecords); err != nil {
		return c, fmt.Errorf("encode exam records: %w", err)
	}
	c.CurrentAssignedDay = doc.CurrentAssignedDay
	return c, nil
}

// encodeJSON marshals v, writing nil slices as empty arrays.
func encodeJSON[T any](list []T) (string, error) {
	if list == nil {
		return "[]", nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
