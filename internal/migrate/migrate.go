// Package migrate applies the embedded SQL schema for the MySQL audit
// mirror.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Run applies pending migrations in lexicographic order. Files are named
// NNNN_description.sql and executed as one statement batch each; the DSN
// must include multiStatements=true.
func Run(ctx context.Context, dsn string, log *slog.Logger) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		return err
	}

	const ddl = `CREATE TABLE IF NOT EXISTS tagger_schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at DATETIME(6) NOT NULL
    ) ENGINE=InnoDB;`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, f := range files {
		base := path.Base(f)
		prefix, _, ok := strings.Cut(base, "_")
		if !ok {
			return fmt.Errorf("migration %q: missing version prefix", base)
		}
		ver, err := strconv.Atoi(prefix)
		if err != nil {
			return fmt.Errorf("migration %q: %w", base, err)
		}
		if applied[ver] {
			continue
		}
		b, err := fs.ReadFile(migrationsFS, f)
		if err != nil {
			return err
		}
		log.Info("applying migration", slog.Int("version", ver), slog.String("file", base))
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("applying %s: %w", base, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO tagger_schema_migrations(version, applied_at) VALUES(?, ?)",
			ver, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM tagger_schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		m[v] = true
	}
	return m, rows.Err()
}
