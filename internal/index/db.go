package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/wachat-insight/internal/parse"
)

// TimeLayout is how record timestamps are stored; it sorts lexically.
const TimeLayout = "2006-01-02T15:04:05"

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS archives (
    archive_path TEXT PRIMARY KEY,
    entries      INTEGER NOT NULL DEFAULT 0,
    encodings    TEXT NOT NULL DEFAULT '',
    first_ts     TEXT NOT NULL DEFAULT '',
    last_ts      TEXT NOT NULL DEFAULT '',
    record_count INTEGER NOT NULL DEFAULT 0,
    indexed_at   TEXT NOT NULL DEFAULT '',
    mtime        INTEGER NOT NULL DEFAULT 0,
    size         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS records (
    archive_path TEXT NOT NULL,
    idx          INTEGER NOT NULL,
    ts           TEXT NOT NULL DEFAULT '',
    sender       TEXT NOT NULL,
    message      TEXT NOT NULL,
    cleaned      TEXT NOT NULL DEFAULT '',
    sentiment    REAL NOT NULL DEFAULT 0,
    label        TEXT NOT NULL DEFAULT '',
    line_number  INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (archive_path, idx)
);

CREATE INDEX IF NOT EXISTS records_ts ON records(ts);
CREATE INDEX IF NOT EXISTS records_sender ON records(sender);

CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
    message,
    content=records,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS records_ai AFTER INSERT ON records BEGIN
    INSERT INTO records_fts(rowid, message) VALUES (new.rowid, new.message);
END;

CREATE TRIGGER IF NOT EXISTS records_ad AFTER DELETE ON records BEGIN
    INSERT INTO records_fts(records_fts, rowid, message) VALUES('delete', old.rowid, old.message);
END;

CREATE TRIGGER IF NOT EXISTS records_au AFTER UPDATE ON records BEGIN
    INSERT INTO records_fts(records_fts, rowid, message) VALUES('delete', old.rowid, old.message);
    INSERT INTO records_fts(rowid, message) VALUES (new.rowid, new.message);
END;
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	// schema version tracking for forced re-index
	db.Exec("CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)")
	d := &DB{db: db}
	d.migrateSchemaVersion()

	return d, nil
}

// schemaVersion should be bumped whenever parsing or cleaning changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		// force re-index by resetting all archive mtime/size to 0
		d.db.Exec("UPDATE archives SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ArchiveInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetArchiveInfo(path string) (*ArchiveInfo, error) {
	var info ArchiveInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM archives WHERE archive_path = ?",
		path,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllArchivePaths() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT archive_path FROM archives")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths[p] = struct{}{}
	}
	return paths, rows.Err()
}

func (d *DB) DeleteArchive(path string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records WHERE archive_path = ?", path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM archives WHERE archive_path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) ArchiveCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM archives").Scan(&n)
	return n, err
}

func (d *DB) RecordCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n)
	return n, err
}

type ArchiveRow struct {
	Path        string
	Entries     int
	Encodings   string
	FirstTs     string
	LastTs      string
	RecordCount int
	IndexedAt   string
}

const archiveColumns = "archive_path, entries, encodings, first_ts, last_ts, record_count, indexed_at"

func scanArchive(row interface{ Scan(...any) error }) (*ArchiveRow, error) {
	var a ArchiveRow
	err := row.Scan(&a.Path, &a.Entries, &a.Encodings, &a.FirstTs, &a.LastTs, &a.RecordCount, &a.IndexedAt)
	return &a, err
}

func (d *DB) GetArchive(path string) (*ArchiveRow, error) {
	a, err := scanArchive(d.db.QueryRow("SELECT "+archiveColumns+" FROM archives WHERE archive_path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListArchives returns every indexed archive, newest messages first.
func (d *DB) ListArchives() ([]ArchiveRow, error) {
	rows, err := d.db.Query("SELECT " + archiveColumns + " FROM archives ORDER BY last_ts DESC, archive_path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchiveRow
	for rows.Next() {
		a, err := scanArchive(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type RecordRow struct {
	Archive    string
	Idx        int
	Ts         string // "" when the header timestamp did not parse
	Sender     string
	Message    string
	Cleaned    string
	Sentiment  float64
	Label      string
	LineNumber int
}

const recordColumns = "archive_path, idx, ts, sender, message, cleaned, sentiment, label, line_number"

func scanRecord(row interface{ Scan(...any) error }) (RecordRow, error) {
	var r RecordRow
	err := row.Scan(&r.Archive, &r.Idx, &r.Ts, &r.Sender, &r.Message, &r.Cleaned, &r.Sentiment, &r.Label, &r.LineNumber)
	return r, err
}

// ChatRecord converts a stored row back into a record.
func (r RecordRow) ChatRecord() parse.ChatRecord {
	rec := parse.ChatRecord{
		Index:          r.Idx,
		Sender:         r.Sender,
		Message:        r.Message,
		Line:           r.LineNumber,
		Cleaned:        r.Cleaned,
		SentimentScore: r.Sentiment,
		SentimentLabel: r.Label,
	}
	if r.Ts != "" {
		if t, err := time.ParseInLocation(TimeLayout, r.Ts, time.Local); err == nil {
			rec.Timestamp = &t
		}
	}
	return rec
}

func (d *DB) queryRecords(query string, args ...any) ([]RecordRow, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) GetRecords(archive string) ([]RecordRow, error) {
	return d.queryRecords(
		"SELECT "+recordColumns+" FROM records WHERE archive_path = ? ORDER BY idx",
		archive,
	)
}

// GetRecord returns one record, or nil if the archive has no record at idx.
func (d *DB) GetRecord(archive string, idx int) (*RecordRow, error) {
	r, err := scanRecord(d.db.QueryRow(
		"SELECT "+recordColumns+" FROM records WHERE archive_path = ? AND idx = ?",
		archive, idx,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// AllRecords returns every stored record, archive by archive in path order.
func (d *DB) AllRecords() ([]parse.ChatRecord, error) {
	rows, err := d.queryRecords("SELECT " + recordColumns + " FROM records ORDER BY archive_path, idx")
	if err != nil {
		return nil, err
	}
	out := make([]parse.ChatRecord, len(rows))
	for i, r := range rows {
		out[i] = r.ChatRecord()
	}
	return out, nil
}

// GetRecordsWindow returns a window of records around a hit record.
// It only loads the necessary rows from the database instead of all records.
// startPos is the number of records before the returned window.
// totalCount is the total number of records in the archive.
func (d *DB) GetRecordsWindow(archive string, hitIdx, context int) (records []RecordRow, localHit int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM records WHERE archive_path = ?", archive,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// idx is dense and 0-based within an archive, so it is also the position
	hitPos := -1
	if hitIdx >= 0 && hitIdx < totalCount {
		hitPos = hitIdx
	}

	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = hitPos - context
		if startPos < 0 {
			startPos = 0
		}
		endPos := hitPos + context + 1
		if endPos > totalCount {
			endPos = totalCount
		}
		limit = endPos - startPos
	}

	records, err = d.queryRecords(
		"SELECT "+recordColumns+" FROM records WHERE archive_path = ? ORDER BY idx LIMIT ? OFFSET ?",
		archive, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	localHit = -1
	for i, r := range records {
		if r.Idx == hitIdx {
			localHit = i
			break
		}
	}
	return records, localHit, startPos, totalCount, nil
}

// Senders returns each sender with its message count, busiest first.
func (d *DB) Senders() ([]SenderCount, error) {
	rows, err := d.db.Query("SELECT sender, COUNT(*) AS n FROM records GROUP BY sender ORDER BY n DESC, sender")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SenderCount
	for rows.Next() {
		var s SenderCount
		if err := rows.Scan(&s.Sender, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type SenderCount struct {
	Sender string
	Count  int
}
