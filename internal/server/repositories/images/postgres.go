package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/server/models"
)

const imageColumns = `id, claim_id, url, hash, timestamp, version, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(row scanner) (*models.Image, error) {
	i := &models.Image{}
	if err := row.Scan(&i.ID, &i.ClaimID, &i.URL, &i.Hash, &i.Timestamp, &i.Version, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	return i, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Image, error) {
	i, err := scanImage(r.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return i, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Image
	for rows.Next() {
		i, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]models.Image, error) {
	return r.list(ctx, `SELECT `+imageColumns+` FROM images ORDER BY created_at DESC, id DESC`)
}

func (r *PostgresRepository) FindByClaimID(ctx context.Context, claimID int64) ([]models.Image, error) {
	return r.list(ctx, `SELECT `+imageColumns+` FROM images WHERE claim_id = $1 ORDER BY id`, claimID)
}

func (r *PostgresRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByClaimID(ctx context.Context, claimID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM images WHERE claim_id = $1`, claimID)
}

func (r *PostgresRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM images WHERE claim_id IN (SELECT id FROM claims WHERE user_id = $1)`, userID)
}

func (r *PostgresRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM images`)
}

func (r *PostgresRepository) Create(ctx context.Context, i *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (claim_id, url, hash, timestamp, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 1, $5, $6)
		 RETURNING id, version`

	err := r.db.QueryRowContext(ctx, query,
		i.ClaimID, i.URL, i.Hash, i.Timestamp, i.CreatedAt, i.UpdatedAt,
	).Scan(&i.ID, &i.Version)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return i, nil
}

func (r *PostgresRepository) Update(ctx context.Context, i *models.Image, expectedVersion int64) error {
	query :=
		`UPDATE images
		 SET url = $2, hash = $3, timestamp = $4, updated_at = $5, claim_id = $6, version = version + 1
		 WHERE id = $1 AND ($7::BIGINT = 0 OR version = $7::BIGINT)
		 RETURNING version`

	err := r.db.QueryRowContext(ctx, query,
		i.ID, i.URL, i.Hash, i.Timestamp, i.UpdatedAt, i.ClaimID, expectedVersion,
	).Scan(&i.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if expectedVersion != 0 {
				return common.Conflict("images.Update", "Image", i.ID)
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
	n, err := r.exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByClaimID(ctx context.Context, claimID int64) (int64, error) {
	return r.exec(ctx, `DELETE FROM images WHERE claim_id = $1`, claimID)
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	return r.exec(ctx, `DELETE FROM images WHERE claim_id IN (SELECT id FROM claims WHERE user_id = $1)`, userID)
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.exec(ctx, `DELETE FROM images`)
}
