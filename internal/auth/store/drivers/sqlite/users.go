package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cartloop/shopapi/internal/auth/domain"
	"github.com/cartloop/shopapi/internal/auth/store"
)

// requireRow converts a zero-row UPDATE into the typed not-found outcome so
// a write racing a delete does not report silent success.
func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, name, email, password_hash, role,
	avatar_public_id, avatar_url,
	reset_token_hash, reset_token_expires_at,
	created_at, updated_at`

func (r *usersRepo) scanUser(row *sql.Row) (domain.User, error) {
	var (
		u              domain.User
		avatarPublicID sql.NullString
		avatarURL      sql.NullString
		resetHash      sql.NullString
		resetExpiry    sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&avatarPublicID, &avatarURL,
		&resetHash, &resetExpiry,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Avatar = mapAvatar(avatarPublicID, avatarURL)
	u.ResetTokenHash = mapNullString(resetHash)
	u.ResetTokenExpiresAt = mapNullTime(resetExpiry)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()

	var avatarPublicID, avatarURL sql.NullString
	if u.Avatar != nil {
		avatarPublicID = sql.NullString{String: u.Avatar.PublicID, Valid: true}
		avatarURL = sql.NullString{String: u.Avatar.URL, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role,
			avatar_public_id, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		avatarPublicID, avatarURL, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(
	ctx context.Context,
	userID, name, email string,
	avatar *domain.Avatar,
) error {
	now := time.Now().UTC()

	if avatar == nil {
		_, err := r.db.ExecContext(ctx, `
			UPDATE users SET name = ?, email = ?, updated_at = ?
			WHERE id = ?`,
			name, email, now, userID)
		return mapConstraint(err)
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ?,
			avatar_public_id = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?`,
		name, email, avatar.PublicID, avatar.URL, now, userID)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ?
		WHERE id = ?`,
		newHash, time.Now().UTC(), userID))
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID string, role string) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE users SET role = ?, updated_at = ?
		WHERE id = ?`,
		role, time.Now().UTC(), userID))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

func (r *usersRepo) SetResetToken(
	ctx context.Context,
	userID, tokenHash string,
	expiresAt time.Time,
) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, expiresAt.UTC(), time.Now().UTC(), userID))
}

func (r *usersRepo) ClearResetToken(ctx context.Context, userID string) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID))
}

func (r *usersRepo) GetUserByResetHash(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE reset_token_hash = ? AND reset_token_expires_at > ?`,
		tokenHash, now.UTC())
	return r.scanUser(row)
}

func (r *usersRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE reset_token_hash IS NOT NULL AND reset_token_expires_at <= ?`,
		now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u              domain.User
			avatarPublicID sql.NullString
			avatarURL      sql.NullString
			resetHash      sql.NullString
			resetExpiry    sql.NullTime
		)
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&avatarPublicID, &avatarURL,
			&resetHash, &resetExpiry,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		u.Avatar = mapAvatar(avatarPublicID, avatarURL)
		u.ResetTokenHash = mapNullString(resetHash)
		u.ResetTokenExpiresAt = mapNullTime(resetExpiry)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
