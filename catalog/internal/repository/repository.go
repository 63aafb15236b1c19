package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"

	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/bookcatalog/catalog-service/catalog/internal/errs"
	"github.com/bookcatalog/catalog-service/catalog/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	ListBooks(ctx context.Context, page, size int) ([]model.Book, error)
	CountBooks(ctx context.Context) (int, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, book model.BookCandidate) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, book model.BookCandidate) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SearchBooks(ctx context.Context, query string) ([]model.Book, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const booksTableName = `books`

var bookColumns = []string{"id", "title", "author", "publication_date", "price"}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) ListBooks(ctx context.Context, page, size int) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("author asc", "title asc").
		Limit(uint64(size)).
		Offset(uint64((page - 1) * size)).
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, storageErr(err)
	}
	return books, nil
}

func (r *repository) CountBooks(ctx context.Context) (int, error) {
	query, _, err := qb.Select("count(*)").
		From(booksTableName).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, storageErr(err)
	}
	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, candidate model.BookCandidate) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "publication_date", "price").
		Values(candidate.Title, candidate.Author, candidate.PublicationDate, candidate.Price).
		Suffix("returning " + strings.Join(bookColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, storageErr(err)
	}
	return book, nil
}

func (r *repository) UpdateBook(ctx context.Context, id int64, candidate model.BookCandidate) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", candidate.Title).
		Set("author", candidate.Author).
		Set("publication_date", candidate.PublicationDate).
		Set("price", candidate.Price).
		Where(sq.Eq{"id": id}).
		Suffix("returning " + strings.Join(bookColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, storageErr(err)
	}
	return book, nil
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) SearchBooks(ctx context.Context, query string) ([]model.Book, error) {
	// Both sides are folded by the engine's lower() so the comparison
	// cannot diverge between the stored value and the query.
	pattern := "%" + likeEscaper.Replace(query) + "%"
	q, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Or{
			sq.Expr("lower(title) like lower(?)", pattern),
			sq.Expr("lower(author) like lower(?)", pattern),
		}).
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("SearchBooks", zap.String("query", q), zap.Any("args", args))

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, q, args...); err != nil {
		return nil, storageErr(err)
	}
	return books, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// storageErr maps engine connectivity failures to ErrStorageUnavailable
// so callers can tell them apart from ordinary negative results.
func storageErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		(pgerrcode.IsConnectionException(pgErr.Code) || pgerrcode.IsOperatorIntervention(pgErr.Code)) {
		return errors.Wrap(errs.ErrStorageUnavailable, pgErr.Message)
	}
	if errors.Is(err, driver.ErrBadConn) {
		return errs.ErrStorageUnavailable
	}
	return err
}
