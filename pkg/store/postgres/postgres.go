// Package postgres provides a PostgreSQL-backed store driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx PostgreSQL driver as "pgx"

	"github.com/cutplanco/cutplan/pkg/store"
)

// Driver implements store.Driver using PostgreSQL.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new PostgreSQL-backed store.
// The connStr is a PostgreSQL connection string, e.g.
// "host=localhost port=5432 user=cutplan dbname=cutplan sslmode=disable"
// or a connection URI like "postgres://cutplan@localhost:5432/cutplan?sslmode=disable".
func NewDriver(ctx context.Context, connStr string) (*Driver, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify the connection is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &Driver{db: db}

	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist.
func (d *Driver) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS issues (
		repo TEXT NOT NULL,
		number BIGINT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ,
		PRIMARY KEY (repo, number)
	);

	CREATE TABLE IF NOT EXISTS pull_requests (
		number BIGINT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		head_branch TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		merge_sha TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_issues_repo ON issues(repo);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

func (d *Driver) UpsertIssue(ctx context.Context, issue *store.Issue) error {
	if issue == nil {
		return fmt.Errorf("cannot store nil issue")
	}

	query := `INSERT INTO issues (repo, number, title, state, url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (repo, number) DO UPDATE SET
			title = EXCLUDED.title,
			state = EXCLUDED.state,
			url = EXCLUDED.url,
			updated_at = EXCLUDED.updated_at`

	_, err := d.db.ExecContext(ctx, query,
		issue.Repo, issue.Number, issue.Title, issue.State, issue.URL, issue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert issue: %w", err)
	}

	return nil
}

func (d *Driver) Issue(ctx context.Context, repo string, number int) (*store.Issue, error) {
	query := `SELECT repo, number, title, state, url, updated_at
		FROM issues WHERE repo = $1 AND number = $2`

	row := d.db.QueryRowContext(ctx, query, repo, number)

	var issue store.Issue
	var updatedAt sql.NullTime

	err := row.Scan(&issue.Repo, &issue.Number, &issue.Title, &issue.State, &issue.URL, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.NotFoundError{Kind: "issue", Key: fmt.Sprintf("%s#%d", repo, number)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}

	if updatedAt.Valid {
		issue.UpdatedAt = updatedAt.Time.UTC()
	}

	return &issue, nil
}

func (d *Driver) FindIssue(ctx context.Context, number int) (*store.Issue, error) {
	query := `SELECT repo, number, title, state, url, updated_at
		FROM issues WHERE number = $1 ORDER BY repo LIMIT 1`

	row := d.db.QueryRowContext(ctx, query, number)

	var issue store.Issue
	var updatedAt sql.NullTime

	err := row.Scan(&issue.Repo, &issue.Number, &issue.Title, &issue.State, &issue.URL, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.NotFoundError{Kind: "issue", Key: fmt.Sprintf("#%d", number)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}

	if updatedAt.Valid {
		issue.UpdatedAt = updatedAt.Time.UTC()
	}

	return &issue, nil
}

func (d *Driver) OldestIssueNumber(ctx context.Context, repo string) (int, error) {
	query := `SELECT COALESCE(MIN(number), 0) FROM issues WHERE repo = $1`

	var oldest int
	if err := d.db.QueryRowContext(ctx, query, repo).Scan(&oldest); err != nil {
		return 0, fmt.Errorf("failed to query oldest issue: %w", err)
	}

	return oldest, nil
}

func (d *Driver) UpsertPullRequest(ctx context.Context, pr *store.PullRequest) error {
	if pr == nil {
		return fmt.Errorf("cannot store nil pull request")
	}

	query := `INSERT INTO pull_requests (number, title, body, head_branch, state, merge_sha, url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (number) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			head_branch = EXCLUDED.head_branch,
			state = EXCLUDED.state,
			merge_sha = EXCLUDED.merge_sha,
			url = EXCLUDED.url,
			updated_at = EXCLUDED.updated_at`

	_, err := d.db.ExecContext(ctx, query,
		pr.Number, pr.Title, pr.Body, pr.HeadBranch, pr.State, pr.MergeSHA, pr.URL, pr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert pull request: %w", err)
	}

	return nil
}

func (d *Driver) PullRequest(ctx context.Context, number int) (*store.PullRequest, error) {
	query := `SELECT number, title, body, head_branch, state, merge_sha, url, updated_at
		FROM pull_requests WHERE number = $1`

	row := d.db.QueryRowContext(ctx, query, number)

	var pr store.PullRequest
	var updatedAt sql.NullTime

	err := row.Scan(&pr.Number, &pr.Title, &pr.Body, &pr.HeadBranch, &pr.State, &pr.MergeSHA, &pr.URL, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.NotFoundError{Kind: "pull request", Key: fmt.Sprintf("#%d", number)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan pull request: %w", err)
	}

	if updatedAt.Valid {
		pr.UpdatedAt = updatedAt.Time.UTC()
	}

	return &pr, nil
}

func (d *Driver) ListPullRequests(ctx context.Context) ([]*store.PullRequest, error) {
	query := `SELECT number, title, body, head_branch, state, merge_sha, url, updated_at
		FROM pull_requests ORDER BY number`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pull requests: %w", err)
	}
	defer rows.Close()

	var out []*store.PullRequest
	for rows.Next() {
		var pr store.PullRequest
		var updatedAt sql.NullTime

		if err := rows.Scan(&pr.Number, &pr.Title, &pr.Body, &pr.HeadBranch, &pr.State, &pr.MergeSHA, &pr.URL, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pull request: %w", err)
		}

		if updatedAt.Valid {
			pr.UpdatedAt = updatedAt.Time.UTC()
		}

		out = append(out, &pr)
	}

	return out, rows.Err()
}

// Close closes the underlying database connection.
func (d *Driver) Close() error {
	return d.db.Close()
}
