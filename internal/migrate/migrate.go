// Package migrate applies the SQL schema files under ops/migrations.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const ledgerTable = "schema_migrations"

// Runner applies and rolls back SQL migration files stored on disk.
// Applied file names are tracked in a bookkeeping table.
type Runner struct {
	db  *sql.DB
	dir string
}

// NewRunner constructs a Runner over the given migrations directory.
func NewRunner(db *sql.DB, dir string) *Runner {
	return &Runner{db: db, dir: dir}
}

// Apply runs every pending *.up.sql file in lexical order.
func (r *Runner) Apply(ctx context.Context) error {
	if err := r.ensureLedger(ctx); err != nil {
		return err
	}
	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}
	names, err := r.files(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range names {
		if applied[name] {
			continue
		}
		if err := r.execFile(ctx, filepath.Join(r.dir, name)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx,
			fmt.Sprintf(`insert into %s(name, applied_at) values ($1,$2)`, ledgerTable),
			name, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

// Rollback reverts the most recently applied migration using its *.down.sql
// counterpart.
func (r *Runner) Rollback(ctx context.Context) error {
	if err := r.ensureLedger(ctx); err != nil {
		return err
	}
	history, err := r.history(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return errors.New("no migrations applied")
	}
	last := history[len(history)-1]
	down := strings.TrimSuffix(last, ".up.sql") + ".down.sql"
	downPath := filepath.Join(r.dir, down)
	if _, err := os.Stat(downPath); err != nil {
		return fmt.Errorf("missing down migration for %s", last)
	}
	if err := r.execFile(ctx, downPath); err != nil {
		return fmt.Errorf("rollback %s: %w", last, err)
	}
	_, err = r.db.ExecContext(ctx,
		fmt.Sprintf(`delete from %s where name = $1`, ledgerTable), last)
	return err
}

// History returns applied migration names in application order.
func (r *Runner) History(ctx context.Context) ([]string, error) {
	if err := r.ensureLedger(ctx); err != nil {
		return nil, err
	}
	return r.history(ctx)
}

func (r *Runner) ensureLedger(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		create table if not exists %s (
			name text primary key,
			applied_at timestamptz not null default now()
		)`, ledgerTable))
	return err
}

func (r *Runner) applied(ctx context.Context) (map[string]bool, error) {
	names, err := r.history(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set, nil
}

func (r *Runner) history(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`select name from %s order by applied_at asc`, ledgerTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Runner) files(suffix string) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// execFile runs every statement of the file inside one transaction.
func (r *Runner) execFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range splitStatements(string(raw)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// splitStatements splits on semicolons outside single-quoted strings. The
// schema files here use no procedural bodies, so this is sufficient.
func splitStatements(raw string) []string {
	var (
		stmts    []string
		current  strings.Builder
		inString bool
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			stmts = append(stmts, s)
		}
		current.Reset()
	}
	for _, r := range raw {
		switch {
		case r == '\'':
			inString = !inString
			current.WriteRune(r)
		case r == ';' && !inString:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return stmts
}
