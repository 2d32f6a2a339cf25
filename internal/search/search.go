package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
)

type Result struct {
	Archive string
	Idx     int
	Ts      string
	Sender  string
	Label   string
	Snippet string
	Rank    float64
}

type Options struct {
	Query   string
	Senders []string // empty = all
	Label   string   // "" = all, or a sentiment class
	Since   string   // "" = no filter, e.g. "2025-02-01"
	Until   string   // "" = no filter, inclusive day
	Limit   int
}

// FromFilter copies a record filter's bounds into search options.
func (o *Options) FromFilter(f parse.Filter) {
	if f.From != nil {
		o.Since = f.From.Format(parse.DateLayout)
	}
	if f.To != nil {
		o.Until = f.To.Format(parse.DateLayout)
	}
	for _, s := range f.Senders {
		if s == parse.AllSenders {
			o.Senders = nil
			return
		}
		o.Senders = append(o.Senders, s)
	}
}

// needsLike returns true if the query contains script FTS5's unicode61
// tokenizer cannot split into words (CJK, Devanagari, emoji).
func needsLike(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Devanagari, r) || unicode.Is(unicode.So, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if query == "" || idx < 0 || len(lower) != len(text) {
		// no match, or case folding moved byte offsets: return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// Search finds records whose message matches the query, best match first.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if needsLike(opts.Query) {
		return searchLike(db, opts)
	}
	return searchFTS(db, opts)
}

// ListAll returns records newest first, optionally narrowed by the filters
// in opts. Query is ignored.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filterConditions(opts)
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	query := fmt.Sprintf(`
		SELECT r.archive_path, r.idx, r.ts, r.sender, r.label, r.message
		FROM records r
		%s
		ORDER BY r.ts DESC, r.archive_path, r.idx DESC
	`, where)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var text string
		if err := rows.Scan(&r.Archive, &r.Idx, &r.Ts, &r.Sender, &r.Label, &text); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(text, "", 40)
		results = append(results, r)
	}
	return results, rows.Err()
}

func filterConditions(opts Options) ([]string, []any) {
	var conditions []string
	var args []any

	if len(opts.Senders) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(opts.Senders)), ",")
		conditions = append(conditions, "r.sender IN ("+marks+")")
		for _, s := range opts.Senders {
			args = append(args, s)
		}
	}
	if opts.Label != "" {
		conditions = append(conditions, "r.label = ?")
		args = append(args, opts.Label)
	}
	// timestamps are stored as 2006-01-02T15:04:05, so day bounds compare lexically
	if opts.Since != "" {
		conditions = append(conditions, "r.ts >= ?")
		args = append(args, opts.Since)
	}
	if opts.Until != "" {
		conditions = append(conditions, "r.ts != '' AND r.ts < ?")
		args = append(args, opts.Until+"T99")
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filterConditions(opts)
	conditions = append([]string{"records_fts MATCH ?"}, conditions...)
	args = append([]any{opts.Query}, args...)

	query := fmt.Sprintf(`
		SELECT
			r.archive_path,
			r.idx,
			r.ts,
			r.sender,
			r.label,
			snippet(records_fts, 0, '>>>','<<<', '...', 40) as snip,
			bm25(records_fts, 1.0) as rank
		FROM records_fts
		JOIN records r ON records_fts.rowid = r.rowid
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filterConditions(opts)
	conditions = append([]string{"r.message LIKE ?"}, conditions...)
	args = append([]any{"%" + opts.Query + "%"}, args...)

	query := fmt.Sprintf(`
		SELECT r.archive_path, r.idx, r.ts, r.sender, r.label, r.message
		FROM records r
		WHERE %s
		ORDER BY r.ts DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(&r.Archive, &r.Idx, &r.Ts, &r.Sender, &r.Label, &fullText); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Archive, &r.Idx, &r.Ts, &r.Sender, &r.Label, &r.Snippet, &r.Rank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
