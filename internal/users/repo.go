package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrUnknownAddress = errors.New("address not found")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, username, email, passwordHash string) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users(username, email, password_hash, active)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id`, username, email, passwordHash).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return 0, ErrUsernameTaken
	}
	return id, err
}

func (r *Repo) ByUsername(ctx context.Context, username string) (User, error) {
	return r.scanUser(r.DB.QueryRow(ctx, `
		SELECT id, username, email, password_hash, active, created_at
		FROM users WHERE username=$1`, username))
}

func (r *Repo) ByID(ctx context.Context, id int64) (User, error) {
	return r.scanUser(r.DB.QueryRow(ctx, `
		SELECT id, username, email, password_hash, active, created_at
		FROM users WHERE id=$1`, id))
}

func (r *Repo) scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

func (r *Repo) Activate(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET active=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Address returns the address only when it belongs to the user.
func (r *Repo) Address(ctx context.Context, id, userID int64) (Address, error) {
	var a Address
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, receiver, addr, zip_code, phone, is_default
		FROM addresses WHERE id=$1 AND user_id=$2`, id, userID).
		Scan(&a.ID, &a.UserID, &a.Receiver, &a.Addr, &a.ZipCode, &a.Phone, &a.IsDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, ErrUnknownAddress
	}
	return a, err
}

func (r *Repo) Addresses(ctx context.Context, userID int64) ([]Address, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, receiver, addr, zip_code, phone, is_default
		FROM addresses WHERE user_id=$1 ORDER BY is_default DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Receiver, &a.Addr, &a.ZipCode, &a.Phone, &a.IsDefault); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) DefaultAddress(ctx context.Context, userID int64) (Address, error) {
	var a Address
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, receiver, addr, zip_code, phone, is_default
		FROM addresses WHERE user_id=$1 AND is_default ORDER BY id LIMIT 1`, userID).
		Scan(&a.ID, &a.UserID, &a.Receiver, &a.Addr, &a.ZipCode, &a.Phone, &a.IsDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, ErrUnknownAddress
	}
	return a, err
}

// AddAddress inserts a new address. The user's first address becomes the
// default, later ones do not.
func (r *Repo) AddAddress(ctx context.Context, a Address) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO addresses(user_id, receiver, addr, zip_code, phone, is_default)
		VALUES ($1, $2, $3, $4, $5,
			NOT EXISTS (SELECT 1 FROM addresses WHERE user_id=$1 AND is_default))
		RETURNING id`,
		a.UserID, a.Receiver, a.Addr, a.ZipCode, a.Phone).Scan(&id)
	return id, err
}
