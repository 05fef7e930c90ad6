package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/crucial707/school-issues/internal/auth"
	"github.com/crucial707/school-issues/internal/db"
	"github.com/crucial707/school-issues/internal/models"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicateUsername is returned by Register when the username is taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials is returned by Authenticate when no user matches.
	// It does not say whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
	Hasher  *auth.Hasher
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(conn *sql.DB, dialect db.Dialect, hasher *auth.Hasher) *UserRepo {
	return &UserRepo{DB: conn, Dialect: dialect, Hasher: hasher}
}

// ==========================
// Initialize
// ==========================
func (r *UserRepo) Init(ctx context.Context) error {
	return db.Migrate(ctx, r.DB, r.Dialect)
}

// ==========================
// Register
// ==========================

// Register inserts a new user. Uniqueness is left to the primary key: a
// conflicting insert comes back as ErrDuplicateUsername.
func (r *UserRepo) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	query := r.Dialect.Rebind(`
		INSERT INTO users (username, password_hash, email, gender, birthday, age)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	user := &models.User{
		Username:     reg.Username,
		PasswordHash: r.Hasher.Hash(reg.Password),
		Email:        reg.Email,
		Gender:       reg.Gender,
		Birthday:     reg.Birthday,
		Age:          reg.Age,
	}

	_, err := r.DB.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Email, user.Gender, user.Birthday, user.Age)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// ==========================
// Authenticate
// ==========================
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	query := r.Dialect.Rebind(`
		SELECT username, password_hash, email, gender, birthday, age
		FROM users
		WHERE username = ? AND password_hash = ?
	`)

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username, r.Hasher.Hash(password)).
		Scan(&user.Username, &user.PasswordHash, &user.Email, &user.Gender, &user.Birthday, &user.Age)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// ==========================
// List Users
// ==========================
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT username, email, gender, birthday, age FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Username, &u.Email, &u.Gender, &u.Birthday, &u.Age); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// isUniqueViolation reports whether err is a primary key or unique
// constraint failure from either supported driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}
