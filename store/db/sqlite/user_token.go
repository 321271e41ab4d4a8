package sqlite

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
		VALUES (?, ?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT (email) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token != '' THEN excluded.refresh_token ELSE user_token.refresh_token END,
			token_type = excluded.token_type,
			expiry_ts = excluded.expiry_ts,
			updated_ts = excluded.updated_ts
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
		WHERE email = ?
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
	if _, err := d.db.ExecContext(ctx, "DELETE FROM user_token WHERE email = ?", email); err != nil {
		return errors.Wrap(err, "failed to delete user token")
	}
	return nil
}
