package importer

import (
	"database/sql"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmtag/internal/model"
)

// ParseFirefox reads bookmarks from a Firefox places.sqlite database. The
// database is opened read-only and immutable so a running Firefox holding
// the file does not block the read.
func ParseFirefox(path string) ([]model.BookmarkRecord, error) {
	dsn := (&url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro&immutable=1"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	// type 1 = bookmark; folders and separators carry no place
	rows, err := db.Query(`
		SELECT COALESCE(b.title, ''), p.url, COALESCE(b.dateAdded, 0)
		FROM moz_bookmarks b
		JOIN moz_places p ON p.id = b.fk
		WHERE b.type = 1
		ORDER BY b.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.BookmarkRecord
	for rows.Next() {
		var title, link string
		var addedMicros int64
		if err := rows.Scan(&title, &link, &addedMicros); err != nil {
			return nil, err
		}
		records = append(records, model.BookmarkRecord{
			Title:     title,
			URL:       link,
			DateAdded: time.UnixMicro(addedMicros),
			Browser:   model.Firefox,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
