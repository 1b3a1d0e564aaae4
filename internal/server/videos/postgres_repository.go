package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dsmirnovs/clipvault/internal/common"
	"github.com/dsmirnovs/clipvault/internal/dbx"
	"github.com/dsmirnovs/clipvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const videoColumns = `id, owner_id, title, COALESCE(description, ''), duration,
	video_file, thumbnail, views, published, created_at, updated_at`

func scanVideo(row *sql.Row) (*models.Video, error) {
	v := &models.Video{}
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.Duration,
		&v.VideoFile, &v.Thumbnail, &v.Views, &v.Published, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// Create inserts a new media record. A duplicate title surfaces as
// common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, video *models.Video) (*models.Video, error) {
	query := `
		INSERT INTO videos (owner_id, title, description, duration, video_file, thumbnail, published)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		RETURNING ` + videoColumns

	created, err := scanVideo(r.db.QueryRowContext(ctx, query,
		video.OwnerID, video.Title, video.Description, video.Duration,
		video.VideoFile, video.Thumbnail, video.Published))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE id = $1`

	return scanVideo(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByTitle(ctx context.Context, title string) (*models.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE title = $1`

	return scanVideo(r.db.QueryRowContext(ctx, query, title))
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) error {
	query := `
		UPDATE videos SET views = views + 1
		WHERE id = $1`

	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM videos WHERE id = $1`

	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
