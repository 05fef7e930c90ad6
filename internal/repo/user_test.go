package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/school-issues/internal/auth"
	"github.com/crucial707/school-issues/internal/db"
	"github.com/crucial707/school-issues/internal/models"
	"github.com/lib/pq"
)

var testHasher = auth.NewHasher("test-pepper")

func aliceRegistration() models.Registration {
	return models.Registration{
		Username: "alice",
		Password: "pw123",
		Email:    "alice@example.com",
		Gender:   models.GenderFemale,
		Birthday: "2008-03-14",
		Age:      17,
	}
}

func TestUserRepo_Register(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(`INSERT INTO users \(username, password_hash, email, gender, birthday, age\)`).
		WithArgs("alice", testHasher.Hash("pw123"), "alice@example.com", "Female", "2008-03-14", 17).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepo(conn, db.SQLite, testHasher)
	user, err := repo.Register(context.Background(), aliceRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "alice" || user.PasswordHash == "pw123" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Register_PostgresPlaceholders(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(`VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepo(conn, db.Postgres, testHasher)
	if _, err := repo.Register(context.Background(), aliceRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Register_Duplicate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	repo := NewUserRepo(conn, db.Postgres, testHasher)
	_, err = repo.Register(context.Background(), aliceRegistration())
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Register_StorageError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("disk I/O error"))

	repo := NewUserRepo(conn, db.SQLite, testHasher)
	_, err = repo.Register(context.Background(), aliceRegistration())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrDuplicateUsername) {
		t.Error("storage error must not be reported as duplicate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Authenticate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	hash := testHasher.Hash("pw123")
	mock.ExpectQuery(`SELECT username, password_hash, email, gender, birthday, age`).
		WithArgs("alice", hash).
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "email", "gender", "birthday", "age"}).
			AddRow("alice", hash, "", "", "2000-01-01", 0))

	repo := NewUserRepo(conn, db.SQLite, testHasher)
	user, err := repo.Authenticate(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Authenticate_NoMatch(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery(`SELECT username, password_hash`).
		WithArgs("alice", testHasher.Hash("wrong")).
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(conn, db.SQLite, testHasher)
	_, err = repo.Authenticate(context.Background(), "alice", "wrong")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_List(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery(`SELECT username, email, gender, birthday, age FROM users ORDER BY username`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "email", "gender", "birthday", "age"}).
			AddRow("alice", "", "", "2000-01-01", 0).
			AddRow("bob", "bob@example.com", "Male", "2007-05-01", 18))

	repo := NewUserRepo(conn, db.SQLite, testHasher)
	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || users[1].Username != "bob" || users[1].PasswordHash != "" {
		t.Errorf("unexpected users: %+v", users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
