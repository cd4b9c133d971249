package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

func isRemote(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") ||
		strings.HasPrefix(dsn, "https://") ||
		strings.HasPrefix(dsn, "http://")
}

// OpenDB opens the ledger database and makes sure the schema exists.
//
// Remote urls (libsql://, http(s)://) are opened with the libsql client, anything
// else is treated as a local sqlite file (or ":memory:").
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("a ledger dsn was not specified")
	}

	var db *sql.DB
	if isRemote(dsn) {
		remote, err := sql.Open("libsql", dsn)
		if err != nil {
			return nil, err
		}
		db = remote
	} else {
		local, err := openLocal(dsn)
		if err != nil {
			return nil, err
		}
		db = local
	}

	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return db, nil
}

func openLocal(path string) (*sql.DB, error) {
	if path != ":memory:" {
		_, statErr := os.Stat(path)
		if os.IsNotExist(statErr) {
			f, err := os.Create(path)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer, a single connection avoids SQLITE_BUSY
	// and keeps ":memory:" databases from being opened once per connection.
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
