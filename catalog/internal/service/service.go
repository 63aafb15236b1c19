package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookcatalog/catalog-service/catalog/internal/errs"
	"github.com/bookcatalog/catalog-service/catalog/internal/model"
	"github.com/bookcatalog/catalog-service/catalog/internal/repository"
	"github.com/bookcatalog/catalog-service/catalog/internal/validation"
	"github.com/bookcatalog/catalog-service/pkg/kafka"
)

// Publisher delivers catalog change events. A nil Publisher disables
// event delivery entirely.
type Publisher interface {
	Publish(topic string, v any) error
}

type Service struct {
	log      *zap.Logger
	repo     repository.Repository
	producer Publisher
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock the validation rules read.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo repository.Repository, producer Publisher, log *zap.Logger, ops ...Option) *Service {
	s := &Service{
		log:      log,
		repo:     repo,
		producer: producer,
		now:      time.Now,
	}
	for _, op := range ops {
		op(s)
	}
	return s
}

// ListBooks returns one 1-based page of the full set ordered by
// (author, title) ascending. A page past the end of the data is an
// empty page, not an error.
func (s *Service) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	if page < 1 || size < 1 {
		return model.ListBooks{}, errs.ErrInvalidPaging
	}

	var (
		items []model.Book
		total int
	)
	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		var err error
		items, err = s.repo.ListBooks(ctx, page, size)
		return err
	})
	gg.Go(func() error {
		var err error
		total, err = s.repo.CountBooks(ctx)
		return err
	})
	if err := gg.Wait(); err != nil {
		return model.ListBooks{}, err
	}
	if items == nil {
		items = []model.Book{}
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: items,
	}, nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

// CreateBook validates the candidate and persists it. On any violation
// no store write happens and the full violation list is returned.
func (s *Service) CreateBook(ctx context.Context, candidate model.BookCandidate) (model.Book, error) {
	if violations := validation.ValidateBook(candidate, s.now()); len(violations) > 0 {
		return model.Book{}, &errs.ValidationError{Violations: violations}
	}
	book, err := s.repo.CreateBook(ctx, candidate)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.EventBookCreated, book.ID)
	return book, nil
}

// UpdateBook overwrites the fields of an existing record, keeping its
// id. The candidate is validated first, so bad input is reported even
// when the target id does not exist.
func (s *Service) UpdateBook(ctx context.Context, id int64, candidate model.BookCandidate) (model.Book, error) {
	if violations := validation.ValidateBook(candidate, s.now()); len(violations) > 0 {
		return model.Book{}, &errs.ValidationError{Violations: violations}
	}
	book, err := s.repo.UpdateBook(ctx, id, candidate)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.EventBookUpdated, book.ID)
	return book, nil
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.publish(model.EventBookDeleted, id)
	return nil
}

// SearchBooks returns records whose title or author contains the query
// as a case-insensitive substring. Result order is store-default.
func (s *Service) SearchBooks(ctx context.Context, query string) ([]model.Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.ErrInvalidQuery
	}
	books, err := s.repo.SearchBooks(ctx, query)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// publish is best-effort: a broker failure is logged and never
// surfaced to the caller, the store remains the source of truth.
func (s *Service) publish(typ model.EventType, bookID int64) {
	if s.producer == nil {
		return
	}
	event := model.BookEvent{
		EventUid:   uuid.NewString(),
		Type:       typ,
		BookID:     bookID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.producer.Publish(kafka.BookEventsTopic, event); err != nil {
		s.log.Error("publish book event",
			zap.String("type", string(typ)),
			zap.Int64("bookId", bookID),
			zap.Error(err))
	}
}
