package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/server/models"
)

const claimColumns = `id, user_id, location, latitude, longitude, status, hash, severity, description,
	detection_type, confirmation_time, version, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClaim(row scanner) (*models.Claim, error) {
	c := &models.Claim{}
	err := row.Scan(&c.ID, &c.UserID, &c.Location, &c.Latitude, &c.Longitude, &c.Status, &c.Hash,
		&c.Severity, &c.Description, &c.DetectionType, &c.ConfirmationTime, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Claim, error) {
	c, err := scanClaim(r.db.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Claim, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]models.Claim, error) {
	return r.list(ctx, `SELECT `+claimColumns+` FROM claims ORDER BY created_at DESC, id DESC`)
}

func (r *PostgresRepository) FindByUserID(ctx context.Context, userID int64) ([]models.Claim, error) {
	return r.list(ctx, `SELECT `+claimColumns+` FROM claims WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM claims WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM claims WHERE user_id = $1`, userID)
}

func (r *PostgresRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM claims`)
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Claim) (*models.Claim, error) {
	query :=
		`INSERT INTO claims (user_id, location, latitude, longitude, status, hash, severity, description,
		                     detection_type, confirmation_time, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12)
		 RETURNING id, version`

	err := r.db.QueryRowContext(ctx, query,
		c.UserID, c.Location, c.Latitude, c.Longitude, c.Status, c.Hash, c.Severity, c.Description,
		c.DetectionType, c.ConfirmationTime, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID, &c.Version)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Claim, expectedVersion int64) error {
	query :=
		`UPDATE claims
		 SET location = $2, latitude = $3, longitude = $4, status = $5, hash = $6, severity = $7,
		     description = $8, detection_type = $9, confirmation_time = $10, updated_at = $11,
		     user_id = $12, version = version + 1
		 WHERE id = $1 AND ($13::BIGINT = 0 OR version = $13::BIGINT)
		 RETURNING version`

	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Location, c.Latitude, c.Longitude, c.Status, c.Hash, c.Severity,
		c.Description, c.DetectionType, c.ConfirmationTime, c.UpdatedAt, c.UserID, expectedVersion,
	).Scan(&c.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if expectedVersion != 0 {
				return common.Conflict("claims.Update", "Claim", c.ID)
			}
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	return r.exec(ctx, `DELETE FROM claims WHERE user_id = $1`, userID)
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.exec(ctx, `DELETE FROM claims`)
}
