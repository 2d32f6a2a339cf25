package index

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/extract"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/scan"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
	Records int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d records=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors, s.Records)
}

// IndexAll brings the store in line with the archives found under inputs.
// Each archive is parsed on its own, so continuation lines never cross
// archive boundaries. Unchanged archives (same mtime and size) are skipped
// and archives that are no longer found are pruned.
func IndexAll(db *DB, inputs []string, cleaner *textclean.Cleaner) (Stats, error) {
	var stats Stats

	files, err := scan.ScanInputs(inputs)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which archives we see, for pruning
	seen := make(map[string]struct{})

	for _, fi := range files {
		seen[fi.Path] = struct{}{}

		needs, err := needsUpdate(db, fi)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		n, err := indexArchive(db, fi, cleaner)
		if err != nil {
			stats.Errors++
			log.Warn().Err(err).Str("archive", fi.Path).Msg("index failed")
			continue
		}
		stats.Updated++
		stats.Records += n
	}

	pruned, err := pruneArchives(db, seen)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, fi scan.FileInfo) (bool, error) {
	if fi.Size == 0 {
		return true, nil // missing inputs are retried every time
	}
	info, err := db.GetArchiveInfo(fi.Path)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new archive
	}
	return info.Mtime != fi.Mtime || info.Size != fi.Size, nil
}

func indexArchive(db *DB, fi scan.FileInfo, cleaner *textclean.Cleaner) (int, error) {
	res := extract.ExtractFiles([]string{fi.Path})
	if len(res.Entries) == 0 {
		if len(res.Failures) > 0 {
			return 0, res.Failures[0]
		}
		return 0, fmt.Errorf("no chat log in archive")
	}

	records := parse.Load(res.Text)
	cleaner.Apply(records)
	var scorer content.Scorer
	for i := range records {
		records[i].SentimentScore = scorer.Score(records[i].Cleaned)
		records[i].SentimentLabel = content.Classify(records[i].SentimentScore)
	}

	// delete old data first
	if err := db.DeleteArchive(fi.Path); err != nil {
		return 0, err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	first, last := span(records)
	_, err = tx.Exec(
		`INSERT INTO archives (archive_path, entries, encodings, first_ts, last_ts, record_count, indexed_at, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fi.Path,
		len(res.Entries),
		encodings(res.Entries),
		first,
		last,
		len(records),
		time.Now().Format(TimeLayout),
		fi.Mtime,
		fi.Size,
	)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO records (archive_path, idx, ts, sender, message, cleaned, sentiment, label, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			fi.Path,
			r.Index,
			formatTs(r.Timestamp),
			r.Sender,
			r.Message,
			r.Cleaned,
			r.SentimentScore,
			r.SentimentLabel,
			r.Line,
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

func formatTs(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimeLayout)
}

func span(records []parse.ChatRecord) (first, last string) {
	for _, r := range records {
		ts := formatTs(r.Timestamp)
		if ts == "" {
			continue
		}
		if first == "" || ts < first {
			first = ts
		}
		if ts > last {
			last = ts
		}
	}
	return first, last
}

func encodings(entries []extract.Entry) string {
	set := make(map[string]struct{})
	for _, e := range entries {
		set[e.Encoding] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for enc := range set {
		out = append(out, enc)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func pruneArchives(db *DB, seen map[string]struct{}) (int, error) {
	all, err := db.AllArchivePaths()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for p := range all {
		if _, ok := seen[p]; !ok {
			if err := db.DeleteArchive(p); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
