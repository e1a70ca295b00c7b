package entries

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/server/models"
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

	q := `(?s)^INSERT\s+INTO\s+entries\s*\(account_id,\s*title,\s*body\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now)
	mock.ExpectQuery(q).
		WithArgs(int64(7), "note", "hello").
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.Entry{AccountID: 7, Title: "note", Body: "hello"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 3 || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+entries`).
		WithArgs(int64(7), "note", "hello").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Entry{AccountID: 7, Title: "note", Body: "hello"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*account_id,\s*title,\s*body,\s*created_at\s+FROM\s+entries\s+ORDER\s+BY\s+id\s*$`

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "account_id", "title", "body", "created_at"}).
		AddRow(int64(1), int64(7), "first", "a", now).
		AddRow(int64(2), int64(7), "second", "b", now)
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "first" || got[1].Title != "second" {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestList_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := pgxmock.NewRows([]string{"id", "account_id", "title", "body", "created_at"})
	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*account_id`).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %+v", got)
	}
}

func TestUsage(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+count\(\*\),\s*COALESCE\(SUM\(octet_length\(title\)\s*\+\s*octet_length\(body\)\),\s*0\)\s+FROM\s+entries\s*$`

	rows := pgxmock.NewRows([]string{"count", "bytes"}).AddRow(int64(2), int64(345))
	mock.ExpectQuery(q).WillReturnRows(rows)

	count, bytes, err := repo.Usage(context.Background())
	if err != nil {
		t.Fatalf("Usage error: %v", err)
	}
	if count != 2 || bytes != 345 {
		t.Fatalf("unexpected usage: count=%d bytes=%d", count, bytes)
	}
}
