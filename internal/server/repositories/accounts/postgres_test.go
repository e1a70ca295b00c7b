package accounts

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/common"
	"github.com/dmitrijs2005/tenantdb/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, pgxmock.PgxConnIface) {
	t.Helper()
	mock, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("pgxmock.NewConn error: %v", err)
	}
	return NewPostgresRepository(mock), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(username,\s*email,\s*password_hash,\s*full_name,\s*is_admin\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*public_id,\s*is_active,\s*created_at\s*$`

	pubID := uuid.New()
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "public_id", "is_active", "created_at"}).
		AddRow(int64(42), pubID, true, now)
	mock.ExpectQuery(q).
		WithArgs("alice", "alice@example.com", "hash", "Alice A", false).
		WillReturnRows(rows)

	a := &models.Account{Username: "alice", Email: "alice@example.com", PasswordHash: "hash", FullName: "Alice A"}
	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.PublicID != pubID || !got.IsActive {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+accounts`

	mock.ExpectQuery(q).
		WithArgs("alice", "alice@example.com", "hash", "", false).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"})

	_, err := repo.Create(context.Background(), &models.Account{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrorDuplicate) {
		t.Fatalf("expected ErrorDuplicate, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+accounts`).
		WithArgs("alice", "alice@example.com", "hash", "", false).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByLogin_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*public_id,\s*username,\s*email,\s*password_hash,\s*full_name,\s*is_admin,\s*is_active,\s*created_at,\s*last_login\s+FROM\s+accounts\s+WHERE\s+\(username\s*=\s*\$1\s+OR\s+email\s*=\s*\$1\)\s+AND\s+is_active\s*$`

	pubID := uuid.New()
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "public_id", "username", "email", "password_hash", "full_name", "is_admin", "is_active", "created_at", "last_login"}).
		AddRow(int64(7), pubID, "alice", "alice@example.com", "hash", "Alice A", false, true, now, nil)
	mock.ExpectQuery(q).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.GetByLogin(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByLogin error: %v", err)
	}
	if got.ID != 7 || got.Username != "alice" || got.LastLogin != nil {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetByLogin_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*public_id`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByLogin(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestCountByLogin(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+count\(\*\)\s+FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1\s+OR\s+email\s*=\s*\$2\s*$`

	rows := pgxmock.NewRows([]string{"count"}).AddRow(int64(1))
	mock.ExpectQuery(q).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(rows)

	n, err := repo.CountByLogin(context.Background(), "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("CountByLogin error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
}

func TestUpdateLastLogin(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+accounts\s+SET\s+last_login\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateLastLogin(context.Background(), 7); err != nil {
		t.Fatalf("UpdateLastLogin error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
