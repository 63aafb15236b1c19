package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookcatalog/catalog-service/catalog/internal/model"
	"github.com/bookcatalog/catalog-service/catalog/internal/validation"
)

func date(s string) model.Date {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return model.Date{Time: d}
}

func TestValidateBook(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 17, 15, 4, 5, 0, time.UTC)

	valid := model.BookCandidate{
		Title:           "The Hobbit",
		Author:          "Tolkien",
		PublicationDate: date("1937-01-01"),
		Price:           8.5,
	}

	var tests = []struct {
		name       string
		mutate     func(c *model.BookCandidate)
		wantFields []string
	}{
		{
			name:       "valid",
			mutate:     func(c *model.BookCandidate) {},
			wantFields: nil,
		},
		{
			name:       "empty title",
			mutate:     func(c *model.BookCandidate) { c.Title = "" },
			wantFields: []string{"title"},
		},
		{
			name:       "whitespace-only title",
			mutate:     func(c *model.BookCandidate) { c.Title = "   " },
			wantFields: []string{"title"},
		},
		{
			name:       "title too short after trimming",
			mutate:     func(c *model.BookCandidate) { c.Title = " a " },
			wantFields: []string{"title"},
		},
		{
			name:       "two-character title ok",
			mutate:     func(c *model.BookCandidate) { c.Title = "It" },
			wantFields: nil,
		},
		{
			name:       "two-rune non-ascii title ok",
			mutate:     func(c *model.BookCandidate) { c.Title = "Мы" },
			wantFields: nil,
		},
		{
			name:       "empty author",
			mutate:     func(c *model.BookCandidate) { c.Author = "\t" },
			wantFields: []string{"author"},
		},
		{
			name:       "zero publication date",
			mutate:     func(c *model.BookCandidate) { c.PublicationDate = model.Date{} },
			wantFields: []string{"publicationDate"},
		},
		{
			name:       "future publication date",
			mutate:     func(c *model.BookCandidate) { c.PublicationDate = date("2024-05-18") },
			wantFields: []string{"publicationDate"},
		},
		{
			name:       "publication date today ok",
			mutate:     func(c *model.BookCandidate) { c.PublicationDate = date("2024-05-17") },
			wantFields: nil,
		},
		{
			name:       "negative price",
			mutate:     func(c *model.BookCandidate) { c.Price = -0.01 },
			wantFields: []string{"price"},
		},
		{
			name:       "zero price ok",
			mutate:     func(c *model.BookCandidate) { c.Price = 0 },
			wantFields: nil,
		},
		{
			name: "all rules fail together in field order",
			mutate: func(c *model.BookCandidate) {
				c.Title = "x"
				c.Author = ""
				c.PublicationDate = date("2030-01-01")
				c.Price = -1
			},
			wantFields: []string{"title", "author", "publicationDate", "price"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := valid
			tt.mutate(&c)

			violations := validation.ValidateBook(c, now)

			fields := make([]string, 0, len(violations))
			for _, v := range violations {
				require.NotEmpty(t, v.Reason)
				fields = append(fields, v.Field)
			}
			if len(tt.wantFields) == 0 {
				require.Empty(t, violations)
				return
			}
			require.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateBook_ClockReadOnce(t *testing.T) {
	t.Parallel()
	// Midnight boundary: the passed-in clock decides, not the wall clock.
	now := time.Date(2024, 5, 17, 23, 59, 59, 0, time.UTC)
	c := model.BookCandidate{
		Title:           "Harry Potter",
		Author:          "Rowling",
		PublicationDate: date("2024-05-17"),
		Price:           10,
	}
	require.Empty(t, validation.ValidateBook(c, now))
	require.Len(t, validation.ValidateBook(c, now.AddDate(0, 0, -1)), 1)
}
