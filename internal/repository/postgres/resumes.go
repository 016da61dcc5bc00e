package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/core/port"
	"github.com/handlegpt/cv/internal/repository"
)

const resumeColumns = "id, user_id, title, content, sections, settings, status, language, template, is_public, version, created_at, updated_at"

// ResumeRepository implements port.ResumeRepository using PostgreSQL. Every
// statement carries the owner's user_id predicate, so rows belonging to other
// users are indistinguishable from missing rows.
type ResumeRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewResumeRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewResumeRepository(exec pgExecutor) *ResumeRepository {
	repo := &ResumeRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ResumeRepository) WithTx(tx pgx.Tx) *ResumeRepository {
	if tx == nil {
		return r
	}
	return &ResumeRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new resume row.
func (r *ResumeRepository) Create(ctx context.Context, resume domain.Resume) error {
	query := r.builder.Insert("resumes").
		Columns(
			"id",
			"user_id",
			"title",
			"content",
			"sections",
			"settings",
			"status",
			"language",
			"template",
			"is_public",
			"version",
			"created_at",
			"updated_at",
		).
		Values(
			resume.ID,
			resume.UserID,
			resume.Title,
			resume.Content,
			resume.Sections,
			resume.Settings,
			resume.Status,
			resume.Language,
			resume.Template,
			resume.IsPublic,
			resume.Version,
			resume.CreatedAt,
			resume.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert resume sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert resume: %w", err)
	}

	return nil
}

// GetByID retrieves a resume owned by userID.
func (r *ResumeRepository) GetByID(ctx context.Context, userID, id string) (*domain.Resume, error) {
	stmt, args, err := r.builder.
		Select(
			"id",
			"user_id",
			"title",
			"content",
			"sections",
			"settings",
			"status",
			"language",
			"template",
			"is_public",
			"version",
			"created_at",
			"updated_at",
		).
		From("resumes").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select resume sql: %w", err)
	}

	return scanResume(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByUser returns summaries of the user's resumes, most recently updated
// first.
func (r *ResumeRepository) ListByUser(ctx context.Context, userID string) ([]domain.ResumeSummary, error) {
	stmt, args, err := r.builder.
		Select("id", "title", "status", "language", "template", "is_public", "updated_at").
		From("resumes").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list resumes sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query resumes: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.ResumeSummary, 0)
	for rows.Next() {
		var summary domain.ResumeSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Title,
			&summary.Status,
			&summary.Language,
			&summary.Template,
			&summary.IsPublic,
			&summary.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan resume summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resumes: %w", err)
	}

	return summaries, nil
}

// Update applies the provided field changes, bumps the version counter, and
// returns the stored row. Nil pointers in the update leave columns untouched.
func (r *ResumeRepository) Update(ctx context.Context, userID, id string, update port.ResumeUpdate) (*domain.Resume, error) {
	query := r.builder.Update("resumes").
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + resumeColumns)

	if update.Title != nil {
		query = query.Set("title", *update.Title)
	}
	if update.Content != nil {
		query = query.Set("content", *update.Content)
	}
	if update.Sections != nil {
		query = query.Set("sections", update.Sections)
	}
	if update.Settings != nil {
		query = query.Set("settings", update.Settings)
	}
	if update.Status != nil {
		query = query.Set("status", *update.Status)
	}
	if update.IsPublic != nil {
		query = query.Set("is_public", *update.IsPublic)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update resume sql: %w", err)
	}

	return scanResume(r.exec.QueryRow(ctx, stmt, args...))
}

// Delete removes a resume owned by userID.
func (r *ResumeRepository) Delete(ctx context.Context, userID, id string) error {
	stmt, args, err := r.builder.Delete("resumes").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete resume sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanResume(row pgx.Row) (*domain.Resume, error) {
	var resume domain.Resume
	if err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Title,
		&resume.Content,
		&resume.Sections,
		&resume.Settings,
		&resume.Status,
		&resume.Language,
		&resume.Template,
		&resume.IsPublic,
		&resume.Version,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan resume: %w", err)
	}
	return &resume, nil
}

var _ port.ResumeRepository = (*ResumeRepository)(nil)
