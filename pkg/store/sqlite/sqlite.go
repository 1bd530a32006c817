// Package sqlite provides a SQLite-backed store driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cutplanco/cutplan/pkg/store"
)

// Driver implements store.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new SQLite-backed store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	d := &Driver{db: db}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist.
func (d *Driver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS issues (
		repo TEXT NOT NULL,
		number INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		updated_at DATETIME,
		PRIMARY KEY (repo, number)
	);

	CREATE TABLE IF NOT EXISTS pull_requests (
		number INTEGER PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		head_branch TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		merge_sha TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		updated_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_issues_repo ON issues(repo);
	`

	_, err := d.db.Exec(schema)
	return err
}

func (d *Driver) UpsertIssue(ctx context.Context, issue *store.Issue) error {
	if issue == nil {
		return fmt.Errorf("cannot store nil issue")
	}

	query := `INSERT INTO issues (repo, number, title, state, url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (repo, number) DO UPDATE SET
			title = excluded.title,
			state = excluded.state,
			url = excluded.url,
			updated_at = excluded.updated_at`

	_, err := d.db.ExecContext(ctx, query,
		issue.Repo, issue.Number, issue.Title, issue.State, issue.URL, issue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert issue: %w", err)
	}

	return nil
}

func (d *Driver) Issue(ctx context.Context, repo string, number int) (*store.Issue, error) {
	query := `SELECT repo, number, title, state, url, updated_at
		FROM issues WHERE repo = ? AND number = ?`

	row := d.db.QueryRowContext(ctx, query, repo, number)

	issue, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, store.NotFoundError{Kind: "issue", Key: fmt.Sprintf("%s#%d", repo, number)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}

	return issue, nil
}

func (d *Driver) FindIssue(ctx context.Context, number int) (*store.Issue, error) {
	query := `SELECT repo, number, title, state, url, updated_at
		FROM issues WHERE number = ? ORDER BY repo LIMIT 1`

	row := d.db.QueryRowContext(ctx, query, number)

	issue, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, store.NotFoundError{Kind: "issue", Key: fmt.Sprintf("#%d", number)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}

	return issue, nil
}

func (d *Driver) OldestIssueNumber(ctx context.Context, repo string) (int, error) {
	query := `SELECT COALESCE(MIN(number), 0) FROM issues WHERE repo = ?`

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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (number) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			head_branch = excluded.head_branch,
			state = excluded.state,
			merge_sha = excluded.merge_sha,
			url = excluded.url,
			updated_at = excluded.updated_at`

	_, err := d.db.ExecContext(ctx, query,
		pr.Number, pr.Title, pr.Body, pr.HeadBranch, pr.State, pr.MergeSHA, pr.URL, pr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert pull request: %w", err)
	}

	return nil
}

func (d *Driver) PullRequest(ctx context.Context, number int) (*store.PullRequest, error) {
	query := `SELECT number, title, body, head_branch, state, merge_sha, url, updated_at
		FROM pull_requests WHERE number = ?`

	row := d.db.QueryRowContext(ctx, query, number)

	pr, err := scanPullRequest(row)
	if err == sql.ErrNoRows {
		return nil, store.NotFoundError{Kind: "pull request", Key: fmt.Sprintf("#%d", number)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan pull request: %w", err)
	}

	return pr, nil
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
		pr, err := scanPullRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pull request: %w", err)
		}
		out = append(out, pr)
	}

	return out, rows.Err()
}

// Close closes the underlying database connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(row scanner) (*store.Issue, error) {
	var issue store.Issue
	var updatedAt sql.NullTime

	err := row.Scan(&issue.Repo, &issue.Number, &issue.Title, &issue.State, &issue.URL, &updatedAt)
	if err != nil {
		return nil, err
	}

	if updatedAt.Valid {
		issue.UpdatedAt = updatedAt.Time.UTC()
	} else {
		issue.UpdatedAt = time.Time{}
	}

	return &issue, nil
}

func scanPullRequest(row scanner) (*store.PullRequest, error) {
	var pr store.PullRequest
	var updatedAt sql.NullTime

	err := row.Scan(&pr.Number, &pr.Title, &pr.Body, &pr.HeadBranch, &pr.State, &pr.MergeSHA, &pr.URL, &updatedAt)
	if err != nil {
		return nil, err
	}

	if updatedAt.Valid {
		pr.UpdatedAt = updatedAt.Time.UTC()
	}

	return &pr, nil
}
