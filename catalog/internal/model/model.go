package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

type Book struct {
	ID              int64   `json:"id" db:"id"`
	Title           string  `json:"title" db:"title"`
	Author          string  `json:"author" db:"author"`
	PublicationDate Date    `json:"publicationDate" db:"publication_date"`
	Price           float64 `json:"price" db:"price"`
}

// BookCandidate is an unvalidated set of field values submitted for
// create or update. The id is always assigned by the store.
type BookCandidate struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	PublicationDate Date    `json:"publicationDate"`
	Price           float64 `json:"price"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooksRequest struct {
	Page int `query:"page" validate:"omitempty,gte=1"`
	Size int `query:"size" validate:"omitempty,gte=1"`
}

// Violation is a single field-rule failure.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Date struct {
	time.Time `json:",inline"`
}

func (d *Date) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	date, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = date
	return
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case nil:
		d.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("unsupported date type %T", src)
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

type EventType string

const (
	EventBookCreated EventType = "BOOK_CREATED"
	EventBookUpdated EventType = "BOOK_UPDATED"
	EventBookDeleted EventType = "BOOK_DELETED"
)

type BookEvent struct {
	EventUid   string    `json:"eventUid"`
	Type       EventType `json:"type"`
	BookID     int64     `json:"bookId"`
	OccurredAt time.Time `json:"occurredAt"`
}
