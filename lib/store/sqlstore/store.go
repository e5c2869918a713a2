package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hrishi045/segstore/lib/keycodec"
	"github.com/hrishi045/segstore/lib/store"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// The table layout mirrors the encoded key: four fixed string columns
// plus one blob column. The composite primary key over the four segment
// columns enforces at most one record per fully qualified key.
const schema = `
CREATE TABLE IF NOT EXISTS segment_store (
	segment0 TEXT NOT NULL,
	segment1 TEXT NOT NULL,
	segment2 TEXT NOT NULL,
	segment3 TEXT NOT NULL,
	data     BLOB NOT NULL,
	PRIMARY KEY (segment0, segment1, segment2, segment3)
);`

// Connection pragmas carried over from the service this store replaces.
// WAL with synchronous=NORMAL is durable enough for the observed write
// rate (a few hundred writes per minute); busy_timeout covers writer
// contention between pooled connections.
var pragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
	"mmap_size(300000000)",
	"busy_timeout(5000)",
}

var segmentColumns = [keycodec.MaxSegments]string{"segment0", "segment1", "segment2", "segment3"}

type storeImpl struct {
	db *sql.DB

	// Point statements, prepared once at open.
	put *sql.Stmt
	get *sql.Stmt
	del *sql.Stmt

	// Range statements, one precompiled variant per prefix length.
	// Index i holds the statement filtering on the first i+1 columns.
	rangeGet [keycodec.MaxSegments]*sql.Stmt
	rangeDel [keycodec.MaxSegments]*sql.Stmt
}

// New opens (and if necessary creates) the SQLite database at path and
// returns a durable segmented store backed by it. The returned store is
// safe for concurrent use; writer serialization is delegated to SQLite.
func New(path string) (store.ISegmentedStore, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &storeImpl{db: db}
	if err := s.prepareStatements(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// dsn builds the connection string with all pragmas applied to every
// pooled connection.
func dsn(path string) string {
	var sb strings.Builder
	sb.WriteString("file:")
	sb.WriteString(path)
	for i, pragma := range pragmas {
		if i == 0 {
			sb.WriteString("?")
		} else {
			sb.WriteString("&")
		}
		sb.WriteString("_pragma=")
		sb.WriteString(pragma)
	}
	return sb.String()
}

// prepareStatements precompiles every statement the store will ever run.
// Range filters are selected by prefix length from a fixed set of four
// variants; no SQL is assembled from request input.
func (s *storeImpl) prepareStatements() error {
	var err error

	if s.put, err = s.db.Prepare(`
		INSERT INTO segment_store (segment0, segment1, segment2, segment3, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (segment0, segment1, segment2, segment3) DO UPDATE SET data = excluded.data
	`); err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}

	if s.get, err = s.db.Prepare(`
		SELECT data FROM segment_store
		WHERE segment0 = ? AND segment1 = ? AND segment2 = ? AND segment3 = ?
	`); err != nil {
		return fmt.Errorf("failed to prepare select statement: %w", err)
	}

	if s.del, err = s.db.Prepare(`
		DELETE FROM segment_store
		WHERE segment0 = ? AND segment1 = ? AND segment2 = ? AND segment3 = ?
	`); err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	for n := 1; n <= keycodec.MaxSegments; n++ {
		filter := prefixFilter(n)

		query := fmt.Sprintf(
			"SELECT segment0, segment1, segment2, segment3, data FROM segment_store WHERE %s",
			filter,
		)
		if s.rangeGet[n-1], err = s.db.Prepare(query); err != nil {
			return fmt.Errorf("failed to prepare range select (%d segments): %w", n, err)
		}

		query = fmt.Sprintf("DELETE FROM segment_store WHERE %s", filter)
		if s.rangeDel[n-1], err = s.db.Prepare(query); err != nil {
			return fmt.Errorf("failed to prepare range delete (%d segments): %w", n, err)
		}
	}

	return nil
}

// prefixFilter returns the equality filter over the first n segment
// columns. Only the fixed column names end up in the SQL; values are
// always bound as parameters.
func prefixFilter(n int) string {
	conditions := make([]string, n)
	for i := 0; i < n; i++ {
		conditions[i] = segmentColumns[i] + " = ?"
	}
	return strings.Join(conditions, " AND ")
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(ctx context.Context, segments []string, value []byte) error {
	encoded, err := keycodec.Encode(segments)
	if err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}

	if value == nil {
		// An empty value is legal; NULL in the data column is not.
		value = []byte{}
	}

	if _, err := s.put.ExecContext(ctx, encoded[0], encoded[1], encoded[2], encoded[3], value); err != nil {
		return store.NewErrorf(store.RetCStorageUnavailable, "upsert failed: %v", err)
	}
	return nil
}

func (s *storeImpl) Get(ctx context.Context, segments []string) ([]byte, error) {
	encoded, err := keycodec.Encode(segments)
	if err != nil {
		return nil, store.NewError(store.RetCInvalidKey, err.Error())
	}

	var value []byte
	err = s.get.QueryRowContext(ctx, encoded[0], encoded[1], encoded[2], encoded[3]).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NewError(store.RetCNotFound, "item not found")
	}
	if err != nil {
		return nil, store.NewErrorf(store.RetCStorageUnavailable, "select failed: %v", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *storeImpl) Delete(ctx context.Context, segments []string) error {
	encoded, err := keycodec.Encode(segments)
	if err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}

	// The affected-row count is not inspected: deleting an absent key
	// succeeds silently.
	if _, err := s.del.ExecContext(ctx, encoded[0], encoded[1], encoded[2], encoded[3]); err != nil {
		return store.NewErrorf(store.RetCStorageUnavailable, "delete failed: %v", err)
	}
	return nil
}

func (s *storeImpl) RangeGet(ctx context.Context, prefix []string) ([]store.Record, error) {
	if err := keycodec.Validate(prefix); err != nil {
		return nil, store.NewError(store.RetCInvalidKey, err.Error())
	}

	rows, err := s.rangeGet[len(prefix)-1].QueryContext(ctx, prefixArgs(prefix)...)
	if err != nil {
		return nil, store.NewErrorf(store.RetCStorageUnavailable, "range select failed: %v", err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var encoded keycodec.EncodedKey
		var value []byte
		if err := rows.Scan(&encoded[0], &encoded[1], &encoded[2], &encoded[3], &value); err != nil {
			return nil, store.NewErrorf(store.RetCStorageUnavailable, "range scan failed: %v", err)
		}
		if value == nil {
			value = []byte{}
		}
		records = append(records, store.Record{
			Key:   keycodec.Decode(encoded),
			Value: value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewErrorf(store.RetCStorageUnavailable, "range scan failed: %v", err)
	}

	return records, nil
}

func (s *storeImpl) RangeDelete(ctx context.Context, prefix []string) error {
	if err := keycodec.Validate(prefix); err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}

	if _, err := s.rangeDel[len(prefix)-1].ExecContext(ctx, prefixArgs(prefix)...); err != nil {
		return store.NewErrorf(store.RetCStorageUnavailable, "range delete failed: %v", err)
	}
	return nil
}

func (s *storeImpl) Close() error {
	stmts := []*sql.Stmt{s.put, s.get, s.del}
	stmts = append(stmts, s.rangeGet[:]...)
	stmts = append(stmts, s.rangeDel[:]...)
	for _, stmt := range stmts {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return s.db.Close()
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// prefixArgs converts prefix segments into statement arguments.
func prefixArgs(prefix []string) []interface{} {
	args := make([]interface{}, len(prefix))
	for i, segment := range prefix {
		args[i] = segment
	}
	return args
}
