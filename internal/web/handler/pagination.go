package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Page is a requested page of a list endpoint.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the requested values to the allowed range.
func NewPage(number, size int) Page {
	if number < 1 {
		number = DefaultPage
	}

	if size < 1 {
		size = DefaultPageSize
	}

	if size > MaxPageSize {
		size = MaxPageSize
	}

	return Page{Number: number, Size: size}
}

// ParsePage reads page/currentPage and page_size/pageSize from the query string.
func ParsePage(c *fiber.Ctx) Page {
	number := c.QueryInt("page", c.QueryInt("currentPage", DefaultPage))
	size := c.QueryInt("page_size", c.QueryInt("pageSize", DefaultPageSize))

	return NewPage(number, size)
}

// Offset is the number of rows skipped.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paginate applies the page to a query.
func (p Page) Paginate(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Size)
}
