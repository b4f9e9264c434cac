package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/authhub/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrVerifyTokenInvalid = errors.New("invalid or expired verification token")
)

const userColumns = `id, username, email, password_hash, is_verified, is_admin,
	verify_token, verify_token_expiry,
	forgot_password_token, forgot_password_token_expiry,
	created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_verified, is_admin, created_at, updated_at)
		VALUES ($1,$2,$3,$4,false,false,$5,$6)
		`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		return user.User{}, mapUniqueViolation(err)
	}

	return u, nil
}

// mapUniqueViolation turns pg unique violations into domain conflicts so
// handlers can answer 409 without sniffing SQL state themselves.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return ErrUsernameTaken
		case "users_email_key":
			return ErrEmailTaken
		default:
			// unique violation on an unknown constraint, still a conflict
			return ErrEmailTaken
		}
	}

	return err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// List returns every user, newest first. Admin-only surface.
func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []user.User

	for rows.Next() {
		u, err := scanUser(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, u)
	}

	return out, rows.Err()
}

// SetVerifyToken attaches a fresh single-use token to the user, replacing
// any pending one.
func (r *UsersRepo) SetVerifyToken(ctx context.Context, id, token string, expiry time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET verify_token = $2, verify_token_expiry = $3, updated_at = NOW()
		WHERE id = $1
	`, id, token, expiry)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ConsumeVerifyToken flips the user to verified and clears the token in one
// conditional UPDATE. Under concurrent identical requests at most one caller
// matches the row; the rest see ErrVerifyTokenInvalid. Wrong value, reuse and
// expiry are deliberately indistinguishable.
func (r *UsersRepo) ConsumeVerifyToken(ctx context.Context, token string) (user.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET is_verified = true,
		    verify_token = NULL,
		    verify_token_expiry = NULL,
		    updated_at = NOW()
		WHERE verify_token = $1 AND verify_token_expiry > NOW()
		RETURNING `+userColumns,
		token,
	)

	u, err := scanUser(row)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrVerifyTokenInvalid
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) getOne(ctx context.Context, query string, args ...any) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsVerified,
		&u.IsAdmin,
		&u.VerifyToken,
		&u.VerifyTokenExpiry,
		&u.ForgotPasswordToken,
		&u.ForgotPasswordTokenExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}
