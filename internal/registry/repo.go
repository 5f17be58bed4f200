package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// Repository defines persistence operations for the catalog.
type Repository interface {
	List(ctx context.Context, f Filter, page shared.PageRequest) ([]University, int, error)
	Get(ctx context.Context, id uuid.UUID) (*University, error)
	FindByContactEmail(ctx context.Context, email string) (*University, error)
	Create(ctx context.Context, u *University) error
	Update(ctx context.Context, id uuid.UUID, u *University) error
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

const universityColumns = `id, name, country, alpha_two_code, continent, state_province, domains, web_pages,
established_year, student_population, programs_offered, contact_address, contact_phone, contact_email,
latitude, longitude, created_at, updated_at`

func scanUniversity(row pgx.Row) (*University, error) {
	var u University
	err := row.Scan(&u.ID, &u.Name, &u.Country, &u.AlphaTwoCode, &u.Continent, &u.StateProvince,
		&u.Domains, &u.WebPages, &u.EstablishedYear, &u.StudentPopulation, &u.ProgramsOffered,
		&u.ContactInfo.Address, &u.ContactInfo.Phone, &u.ContactInfo.Email,
		&u.Latitude, &u.Longitude, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// whereClause renders the normalized filter as SQL. Values were lower-cased by
// BuildFilter, so equality compares against LOWER(column) and substring
// matching uses ILIKE.
func whereClause(f Filter) (string, []any) {
	var clauses []string
	var args []any
	add := func(format string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if f.Country != "" {
		add("LOWER(country) = $%d", f.Country)
	}
	if f.Continent != "" {
		add("LOWER(continent) = $%d", f.Continent)
	}
	if f.Name != "" {
		add("name ILIKE '%%' || $%d || '%%'", f.Name)
	}
	if f.EstablishedYear != "" {
		add("established_year::text = $%d", f.EstablishedYear)
	}
	if f.Program != "" {
		add("EXISTS (SELECT 1 FROM unnest(programs_offered) AS prog WHERE prog ILIKE '%%' || $%d || '%%')", f.Program)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns one page of matching records plus the total match count.
func (r *PGRepository) List(ctx context.Context, f Filter, page shared.PageRequest) ([]University, int, error) {
	where, args := whereClause(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM universities`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM universities%s ORDER BY name OFFSET $%d LIMIT $%d`,
		universityColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.Skip, page.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []University
	for rows.Next() {
		var u University
		if err := rows.Scan(&u.ID, &u.Name, &u.Country, &u.AlphaTwoCode, &u.Continent, &u.StateProvince,
			&u.Domains, &u.WebPages, &u.EstablishedYear, &u.StudentPopulation, &u.ProgramsOffered,
			&u.ContactInfo.Address, &u.ContactInfo.Phone, &u.ContactInfo.Email,
			&u.Latitude, &u.Longitude, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

// Get fetches a record by id.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*University, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+universityColumns+` FROM universities WHERE id = $1`, id)
	return scanUniversity(row)
}

// FindByContactEmail fetches a record by its contact email dedup key.
func (r *PGRepository) FindByContactEmail(ctx context.Context, email string) (*University, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+universityColumns+` FROM universities WHERE contact_email = $1`, email)
	return scanUniversity(row)
}

// Create inserts a new record.
func (r *PGRepository) Create(ctx context.Context, u *University) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `INSERT INTO universities (id, name, country, alpha_two_code, continent, state_province,
domains, web_pages, established_year, student_population, programs_offered,
contact_address, contact_phone, contact_email, latitude, longitude, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		u.ID, u.Name, u.Country, u.AlphaTwoCode, u.Continent, u.StateProvince,
		u.Domains, u.WebPages, u.EstablishedYear, u.StudentPopulation, u.ProgramsOffered,
		u.ContactInfo.Address, u.ContactInfo.Phone, u.ContactInfo.Email, u.Latitude, u.Longitude, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrAlreadyExists
		}
		return err
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// Update replaces a record by id.
func (r *PGRepository) Update(ctx context.Context, id uuid.UUID, u *University) error {
	tag, err := r.pool.Exec(ctx, `UPDATE universities SET name = $1, country = $2, alpha_two_code = $3, continent = $4,
state_province = $5, domains = $6, web_pages = $7, established_year = $8, student_population = $9,
programs_offered = $10, contact_address = $11, contact_phone = $12, contact_email = $13,
latitude = $14, longitude = $15, updated_at = $16 WHERE id = $17`,
		u.Name, u.Country, u.AlphaTwoCode, u.Continent, u.StateProvince,
		u.Domains, u.WebPages, u.EstablishedYear, u.StudentPopulation, u.ProgramsOffered,
		u.ContactInfo.Address, u.ContactInfo.Phone, u.ContactInfo.Email, u.Latitude, u.Longitude,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a record by id.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM universities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
