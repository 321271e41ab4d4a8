package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/vocalagent/vocalagent/store"
)

func (d *DB) UpsertUserToken(ctx context.Context, upsert *store.UserToken) (*store.UserToken, error) {
	query := `
		INSERT INTO user_token (email, access_token, refresh_token, token_type, expiry_ts, updated_ts)
		VALUES ($1, $2, $3, $4, $5, EXTRACT(EPOCH FROM NOW())::BIGINT)
		ON CONFLICT (email) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = CASE WHEN EXCLUDED.refresh_token != '' THEN EXCLUDED.refresh_token ELSE user_token.refresh_token END,
			token_type = EXCLUDED.token_type,
			expiry_ts = EXCLUDED.expiry_ts,
			updated_ts = EXCLUDED.updated_ts
	`
	_, err := d.db.ExecContext(ctx, query,
		upsert.Email, upsert.AccessToken, upsert.RefreshToken, upsert.TokenType, upsert.Expiry.Unix())
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user token")
	}
	return d.GetUserToken(ctx, upsert.Email)
}

func (d *DB) GetUserToken(ctx context.Context, email string) (*store.UserToken, error) {
	query := `
		SELECT email, access_token, refresh_token, token_type, expiry_ts, created_ts, updated_ts
		FROM user_token
		WHERE email = $1
	`
	token := &store.UserToken{}
	var expiryTs int64
	err := d.db.QueryRowContext(ctx, query, email).Scan(
		&token.Email, &token.AccessToken, &token.RefreshToken, &token.TokenType,
		&expiryTs, &token.CreatedTs, &token.UpdatedTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user token")
	}
	token.Expiry = time.Unix(expiryTs, 0)
	return token, nil
}

func (d *DB) DeleteUserToken(ctx context.Context, email string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM user_token WHERE email = $1", email); err != nil {
		return errors.Wrap(err, "failed to delete user token")
	}
	return nil
}
