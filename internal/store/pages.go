package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/portal/internal/apperr"
	"github.com/starford/portal/internal/document"
)

// ListPages returns every page ordered by title. Documents are decoded only
// when includeDocument is set.
func (db *DB) ListPages(ctx context.Context, includeDocument bool) ([]document.Page, error) {
	query := `SELECT slug, title, '' FROM pages ORDER BY title, slug`
	if includeDocument {
		query = `SELECT slug, title, data FROM pages ORDER BY title, slug`
	}
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list pages: %w", err)
	}
	defer rows.Close()

	out := []document.Page{}
	for rows.Next() {
		var p document.Page
		var data string
		if err := rows.Scan(&p.Slug, &p.Title, &data); err != nil {
			return nil, err
		}
		if includeDocument {
			doc, err := decode(p.Slug, data)
			if err != nil {
				return nil, err
			}
			p.Document = doc
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPage returns one page with its document, or apperr.ErrNotFound.
func (db *DB) GetPage(ctx context.Context, slug string) (*document.Page, error) {
	var p document.Page
	var data string
	err := db.conn.QueryRowContext(ctx,
		`SELECT slug, title, data FROM pages WHERE slug = ?`, slug,
	).Scan(&p.Slug, &p.Title, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get page %s: %w", slug, err)
	}
	if p.Document, err = decode(p.Slug, data); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPage inserts a page or replaces its title and document wholesale.
func (db *DB) UpsertPage(ctx context.Context, slug, title string, doc document.Document) error {
	data, err := document.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode page %s: %w", slug, err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO pages (slug, title, data)
		VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			data  = excluded.data
	`, slug, title, string(data))
	if err != nil {
		return fmt.Errorf("store: upsert page %s: %w", slug, err)
	}
	return nil
}

// DeletePage removes a page. Deleting a missing slug is not an error.
func (db *DB) DeletePage(ctx context.Context, slug string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM pages WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("store: delete page %s: %w", slug, err)
	}
	return nil
}

// CountPages returns the number of stored pages.
func (db *DB) CountPages(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count pages: %w", err)
	}
	return n, nil
}

// SeedIfEmpty inserts page only when the table has no rows and reports
// whether it did. The check and insert share one transaction.
func (db *DB) SeedIfEmpty(ctx context.Context, slug, title string, doc document.Document) (bool, error) {
	data, err := document.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("store: encode seed: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO pages (slug, title, data)
		SELECT ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM pages)
	`, slug, title, string(data))
	if err != nil {
		return false, fmt.Errorf("store: seed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: seed rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("store: commit seed: %w", err)
	}
	return n > 0, nil
}

func decode(slug, data string) (*document.Document, error) {
	var doc document.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("store: decode page %s: %w", slug, err)
	}
	return &doc, nil
}
