package handler

import (
	"context"

	"github.com/bookcatalog/catalog-service/catalog/internal/model"
	"github.com/bookcatalog/catalog-service/catalog/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, candidate model.BookCandidate) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, candidate model.BookCandidate) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SearchBooks(ctx context.Context, query string) ([]model.Book, error)
}

var _ CatalogService = (*service.Service)(nil)
