package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// Repository defines persistence operations for todos.
type Repository interface {
	List(ctx context.Context) ([]Todo, error)
	Get(ctx context.Context, id uuid.UUID) (*Todo, error)
	Create(ctx context.Context, t *Todo) error
	Update(ctx context.Context, id uuid.UUID, t *Todo) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns all todos ordered by creation time.
func (r *PGRepository) List(ctx context.Context) ([]Todo, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, description, completed, created_at, updated_at FROM todos ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// Get fetches a todo by id.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Todo, error) {
	var t Todo
	err := r.pool.QueryRow(ctx, `SELECT id, title, description, completed, created_at, updated_at FROM todos WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a new todo.
func (r *PGRepository) Create(ctx context.Context, t *Todo) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `INSERT INTO todos (id, title, description, completed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`, t.ID, t.Title, t.Description, t.Completed, now, now)
	if err != nil {
		return err
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// Update replaces a todo by id.
func (r *PGRepository) Update(ctx context.Context, id uuid.UUID, t *Todo) error {
	tag, err := r.pool.Exec(ctx, `UPDATE todos SET title = $1, description = $2, completed = $3, updated_at = $4 WHERE id = $5`,
		t.Title, t.Description, t.Completed, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a todo by id.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
