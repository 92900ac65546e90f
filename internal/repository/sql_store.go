package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// ErrConflict reports that Commit hit a unique constraint, typically because a
// concurrent unit of work inserted the same key first. Retrying re-reads the winner.
var ErrConflict = errors.New("conflicting write")

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// SQLStore runs units of work on PostgreSQL or SQLite.
type SQLStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{DB: db, Dialect: dialect}
}

// stagedOp is either a statement or, when exec is set, a read-modify-write step that
// runs at its position in the commit.
type stagedOp struct {
	query string
	args  []interface{}
	exec  func(ctx context.Context, tx *sql.Tx) error
}

type sqlTx struct {
	tx      *sql.Tx
	dialect Dialect
	ops     []stagedOp
}

func (s *SQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &sqlTx{tx: tx, dialect: s.Dialect}, nil
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// rebind turns $N placeholders into SQLite's ?N form.
func (t *sqlTx) rebind(query string) string {
	if t.dialect == SQLite {
		return placeholder.ReplaceAllString(query, "?${1}")
	}
	return query
}

// forUpdate locks selected rows on PostgreSQL. SQLite transactions already hold the
// database write lock (_txlock=immediate).
func (t *sqlTx) forUpdate(query string) string {
	if t.dialect == Postgres {
		return query + " FOR UPDATE"
	}
	return query
}

func (t *sqlTx) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.rebind(query), args...)
}

func (t *sqlTx) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.rebind(query), args...)
}

func (t *sqlTx) stage(query string, args ...interface{}) {
	t.ops = append(t.ops, stagedOp{query: query, args: args})
}

func (t *sqlTx) stageFunc(exec func(ctx context.Context, tx *sql.Tx) error) {
	t.ops = append(t.ops, stagedOp{exec: exec})
}

func (t *sqlTx) Staged() int {
	return len(t.ops)
}

// Commit applies the staged writes in order and commits. Any failure rolls the whole
// unit back.
func (t *sqlTx) Commit(ctx context.Context) error {
	for i, op := range t.ops {
		var err error
		if op.exec != nil {
			err = op.exec(ctx, t.tx)
		} else {
			_, err = t.tx.ExecContext(ctx, t.rebind(op.query), op.args...)
		}
		if err != nil {
			if rbErr := t.tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("rollback after failed write")
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("staged write %d: %w: %v", i, ErrConflict, err)
			}
			return fmt.Errorf("staged write %d: %w", i, err)
		}
	}
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
