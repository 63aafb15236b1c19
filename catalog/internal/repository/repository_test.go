package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookcatalog/catalog-service/catalog/internal/errs"
	"github.com/bookcatalog/catalog-service/catalog/internal/model"
)

func newTestRepo(t *testing.T) (*repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewRepository(sqlx.NewDb(db, "sqlmock"), zap.NewNop())
	require.NoError(t, err)
	return repo, mock
}

func bookRows(books ...model.Book) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "author", "publication_date", "price"})
	for _, b := range books {
		rows.AddRow(b.ID, b.Title, b.Author, b.PublicationDate.Time, b.Price)
	}
	return rows
}

func date(s string) model.Date {
	d, _ := time.Parse(time.DateOnly, s)
	return model.Date{Time: d}
}

func TestRepository_ListBooks(t *testing.T) {
	repo, mock := newTestRepo(t)

	want := model.Book{ID: 2, Title: "The Hobbit", Author: "Tolkien", PublicationDate: date("1937-01-01"), Price: 8.5}
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, title, author, publication_date, price FROM books ORDER BY author asc, title asc LIMIT 3 OFFSET 3")).
		WillReturnRows(bookRows(want))

	books, err := repo.ListBooks(context.Background(), 2, 3)
	require.NoError(t, err)
	require.Equal(t, []model.Book{want}, books)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListBooks_PastTheEndPageIsEmpty(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 10 OFFSET 90")).
		WillReturnRows(bookRows())

	books, err := repo.ListBooks(context.Background(), 10, 10)
	require.NoError(t, err)
	require.Empty(t, books)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountBooks(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM books")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountBooks(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetBook(t *testing.T) {
	repo, mock := newTestRepo(t)

	want := model.Book{ID: 7, Title: "Harry Potter", Author: "Rowling", PublicationDate: date("2000-01-01"), Price: 10}
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, title, author, publication_date, price FROM books WHERE id = $1 LIMIT 1")).
		WithArgs(int64(7)).
		WillReturnRows(bookRows(want))

	book, err := repo.GetBook(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, want, book)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetBook_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM books").
		WithArgs(int64(404)).
		WillReturnRows(bookRows())

	_, err := repo.GetBook(context.Background(), 404)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateBook(t *testing.T) {
	repo, mock := newTestRepo(t)

	candidate := model.BookCandidate{Title: "The Hobbit", Author: "Tolkien", PublicationDate: date("1937-01-01"), Price: 8.5}
	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO books (title,author,publication_date,price) VALUES ($1,$2,$3,$4) returning id, title, author, publication_date, price")).
		WithArgs(candidate.Title, candidate.Author, candidate.PublicationDate.Time, candidate.Price).
		WillReturnRows(bookRows(model.Book{
			ID: 1, Title: candidate.Title, Author: candidate.Author,
			PublicationDate: candidate.PublicationDate, Price: candidate.Price,
		}))

	book, err := repo.CreateBook(context.Background(), candidate)
	require.NoError(t, err)
	require.EqualValues(t, 1, book.ID)
	require.Equal(t, candidate.Title, book.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateBook(t *testing.T) {
	repo, mock := newTestRepo(t)

	candidate := model.BookCandidate{Title: "The Hobbit", Author: "Tolkien", PublicationDate: date("1937-01-01"), Price: 9}
	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE books SET title = $1, author = $2, publication_date = $3, price = $4 WHERE id = $5 returning id, title, author, publication_date, price")).
		WithArgs(candidate.Title, candidate.Author, candidate.PublicationDate.Time, candidate.Price, int64(2)).
		WillReturnRows(bookRows(model.Book{
			ID: 2, Title: candidate.Title, Author: candidate.Author,
			PublicationDate: candidate.PublicationDate, Price: candidate.Price,
		}))

	book, err := repo.UpdateBook(context.Background(), 2, candidate)
	require.NoError(t, err)
	require.EqualValues(t, 2, book.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateBook_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("UPDATE books").
		WillReturnRows(bookRows())

	_, err := repo.UpdateBook(context.Background(), 404, model.BookCandidate{
		Title: "x", Author: "y", PublicationDate: date("2000-01-01"),
	})
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteBook(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteBook(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteBook_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("DELETE FROM books").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteBook(context.Background(), 404)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SearchBooks(t *testing.T) {
	repo, mock := newTestRepo(t)

	want := model.Book{ID: 7, Title: "Harry Potter", Author: "Rowling", PublicationDate: date("2000-01-01"), Price: 10}
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, title, author, publication_date, price FROM books WHERE (lower(title) like lower($1) OR lower(author) like lower($2))")).
		WithArgs("%pot%", "%pot%").
		WillReturnRows(bookRows(want))

	books, err := repo.SearchBooks(context.Background(), "pot")
	require.NoError(t, err)
	require.Equal(t, []model.Book{want}, books)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SearchBooks_EscapesLikeMetacharacters(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM books").
		WithArgs(`%100\% Go\_now%`, `%100\% Go\_now%`).
		WillReturnRows(bookRows())

	_, err := repo.SearchBooks(context.Background(), "100% Go_now")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_StorageUnavailable(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM books").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ConnectionFailure, Message: "server down"})

	_, err := repo.ListBooks(context.Background(), 1, 10)
	require.ErrorIs(t, err, errs.ErrStorageUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}
