package users

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

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, fullname, password_hash,
	COALESCE(avatar, ''), COALESCE(cover_image, ''), COALESCE(refresh_token_hash, ''),
	created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Avatar, &u.CoverImage, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Create inserts a new identity. Uniqueness violations on username or email
// surface as common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, fullname, password_hash, avatar, cover_image)
		VALUES (lower($1), $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash, user.Avatar, user.CoverImage))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, identifier string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = lower($1) OR email = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, identifier))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// SetRefreshTokenHash overwrites the stored hash; the empty string clears it.
func (r *PostgresRepository) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	query := `
		UPDATE users SET refresh_token_hash = NULLIF($2, ''), updated_at = now()
		WHERE id = $1`

	return r.execOne(ctx, query, id, hash)
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	query := `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1`

	return r.execOne(ctx, query, id, hash)
}

func (r *PostgresRepository) SetAssetSlot(ctx context.Context, id, slot, url string) (*models.User, error) {
	var column string
	switch slot {
	case common.SlotAvatar:
		column = "avatar"
	case common.SlotCoverImage:
		column = "cover_image"
	default:
		return nil, fmt.Errorf("%w: unknown asset slot %q", common.ErrorValidation, slot)
	}

	query := `
		UPDATE users SET ` + column + ` = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id, url))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, email, fullName string) (*models.User, error) {
	query := `
		UPDATE users SET
			email = COALESCE(NULLIF($2, ''), email),
			fullname = COALESCE(NULLIF($3, ''), fullname),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query, id, email, fullName))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorConflict
		}
		return nil, err
	}
	return updated, nil
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
