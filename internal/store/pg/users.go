package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opsdeck/garrison/internal/domain/repository"
)

const userCols = `id, username, email, avatar,
	coalesce(password_hash, ''), coalesce(discord_id, ''),
	coalesce(discord_token, ''), is_admin, created_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Avatar,
		&u.PasswordHash, &u.DiscordID, &u.DiscordToken, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*repository.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*repository.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (s *Store) GetByDiscordID(ctx context.Context, discordID string) (*repository.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE discord_id = $1`, discordID)
	return scanUser(row)
}

func (s *Store) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if in.Username == "" {
		return nil, repository.ErrInvalidInput
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, avatar, password_hash, discord_id)
		VALUES ($1, $2, $3, nullif($4, ''), nullif($5, ''))
		RETURNING `+userCols,
		in.Username, in.Email, in.Avatar, in.PasswordHash, in.DiscordID)

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) SetDiscordToken(ctx context.Context, userID, token string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE users SET discord_token = nullif($2, '') WHERE id = $1`, userID, token)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) SetPasswordHash(ctx context.Context, userID, hash string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*Store)(nil)
