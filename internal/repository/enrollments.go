package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmehdipour/enroll-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// EnrollmentsRepository is the storage contract shared by every backend.
type EnrollmentsRepository interface {
	// List returns every enrollment, newest first.
	List(ctx context.Context) ([]model.Enrollment, error)
	// GetByEmail returns nil, nil when no enrollment has this exact email.
	GetByEmail(ctx context.Context, email string) (*model.Enrollment, error)
	// InsertIfAbsent stores e unless its id or email is already present.
	// It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, e model.Enrollment) (bool, error)
	Count(ctx context.Context) (int, error)
}

const enrollmentColumns = `id, name, email, telephone, location, newsletter, niveau_etudes, ecole, enrolled_at`

type EnrollmentsRepositoryImpl struct {
	db *sqlx.DB
}

// NewEnrollmentsRepository returns a SQL-backed repository. The dialect is
// taken from the driver name of db (sqlite, pgx or mysql).
func NewEnrollmentsRepository(db *sqlx.DB) *EnrollmentsRepositoryImpl {
	return &EnrollmentsRepositoryImpl{db: db}
}

var _ EnrollmentsRepository = (*EnrollmentsRepositoryImpl)(nil)

func (r *EnrollmentsRepositoryImpl) List(ctx context.Context) ([]model.Enrollment, error) {
	rows := []model.Enrollment{}
	q := `SELECT ` + enrollmentColumns + ` FROM enrolled_users ORDER BY enrolled_at DESC`
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return rows, nil
}

func (r *EnrollmentsRepositoryImpl) GetByEmail(ctx context.Context, email string) (*model.Enrollment, error) {
	var e model.Enrollment
	q := r.db.Rebind(`SELECT ` + enrollmentColumns + ` FROM enrolled_users WHERE email = ? LIMIT 1`)
	err := r.db.GetContext(ctx, &e, q, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment by email: %w", err)
	}
	return &e, nil
}

func (r *EnrollmentsRepositoryImpl) InsertIfAbsent(ctx context.Context, e model.Enrollment) (bool, error) {
	q := r.db.Rebind(insertStatement(r.db.DriverName()))
	res, err := r.db.ExecContext(ctx, q,
		e.ID, e.Name, e.Email, e.Telephone, e.Location, e.Newsletter, e.NiveauEtudes, e.Ecole, e.EnrolledAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert enrollment rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *EnrollmentsRepositoryImpl) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM enrolled_users`); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

// Migrate creates the enrolled_users table and its indexes if missing.
func (r *EnrollmentsRepositoryImpl) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements(r.db.DriverName()) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate enrolled_users: %w", err)
		}
	}
	return nil
}

func insertStatement(driver string) string {
	const cols = `(` + enrollmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if driver == "mysql" {
		// not INSERT IGNORE: that also turns truncation and other strict-mode
		// errors into warnings. A duplicate reports 0 rows affected.
		return `INSERT INTO enrolled_users ` + cols + ` ON DUPLICATE KEY UPDATE id = id`
	}
	return `INSERT INTO enrolled_users ` + cols + ` ON CONFLICT DO NOTHING`
}

func schemaStatements(driver string) []string {
	switch driver {
	case "mysql":
		return []string{`
CREATE TABLE IF NOT EXISTS enrolled_users (
    id            VARCHAR(191) NOT NULL PRIMARY KEY,
    name          VARCHAR(255) NOT NULL,
    email         VARCHAR(191) NOT NULL UNIQUE,
    telephone     VARCHAR(64)  NOT NULL DEFAULT '',
    location      VARCHAR(255) NOT NULL DEFAULT '',
    newsletter    TINYINT(1)   NOT NULL DEFAULT 0,
    niveau_etudes VARCHAR(255) NOT NULL DEFAULT '',
    ecole         VARCHAR(255) NOT NULL DEFAULT '',
    enrolled_at   DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
    KEY idx_enrolled_users_enrolled_at (enrolled_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`}
	case "pgx", "postgres":
		return []string{`
CREATE TABLE IF NOT EXISTS enrolled_users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    telephone     TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL DEFAULT '',
    newsletter    BOOLEAN NOT NULL DEFAULT FALSE,
    niveau_etudes TEXT NOT NULL DEFAULT '',
    ecole         TEXT NOT NULL DEFAULT '',
    enrolled_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
			`CREATE INDEX IF NOT EXISTS idx_enrolled_users_enrolled_at ON enrolled_users (enrolled_at)`,
		}
	default:
		return []string{`
CREATE TABLE IF NOT EXISTS enrolled_users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT UNIQUE NOT NULL,
    telephone     TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL DEFAULT '',
    newsletter    BOOLEAN NOT NULL DEFAULT 0,
    niveau_etudes TEXT NOT NULL DEFAULT '',
    ecole         TEXT NOT NULL DEFAULT '',
    enrolled_at   DATETIME DEFAULT CURRENT_TIMESTAMP
)`,
			`CREATE INDEX IF NOT EXISTS idx_enrolled_users_enrolled_at ON enrolled_users (enrolled_at)`,
		}
	}
}
