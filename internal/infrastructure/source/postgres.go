package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// PostgresSource reads book content rows from the book_content table. The
// title is folded into the content as a markdown heading so chunks carry
// their chapter context.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT content_id, title, slug, content
FROM book_content
ORDER BY order_index, content_type
`)
	if err != nil {
		return nil, fmt.Errorf("query book_content: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var (
			contentID int64
			title     string
			slug      string
			content   string
		)
		if err := rows.Scan(&contentID, &title, &slug, &content); err != nil {
			return nil, fmt.Errorf("scan book_content row: %w", err)
		}
		docs = append(docs, domain.Document{
			Content: fmt.Sprintf("# %s\n\n%s", title, content),
			Source:  "db/" + slug,
			DocID:   strconv.FormatInt(contentID, 10),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book_content rows: %w", err)
	}
	return docs, nil
}
