package books

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/goodbooks/goodbooks-api/apperr"
)

const authorBooksLimit = 50

type listBooksParams struct {
	Q        string  `form:"q"`
	MinAvg   float64 `form:"min_avg" binding:"omitempty,gte=0,lte=5"`
	YearFrom int     `form:"year_from"`
	YearTo   int     `form:"year_to"`
	Sort     string  `form:"sort,default=avg" binding:"omitempty,oneof=avg ratings_count year title"`
	Order    string  `form:"order,default=desc" binding:"omitempty,oneof=asc desc"`
	Page     int64   `form:"page,default=1" binding:"gte=1"`
	PageSize int64   `form:"page_size,default=20" binding:"gte=1,lte=100"`
}

// ListBooks searches and pages through the catalogue. q matches title or
// authors case-insensitively.
func (s *Service) ListBooks(c *gin.Context) {
	var params listBooksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		e := apperr.FromValidation(err)
		c.JSON(apperr.Status(e), apperr.Payload(e))
		return
	}
	s.hit("books:list")

	query := BookQuery{
		Q:        params.Q,
		MinAvg:   params.MinAvg,
		YearFrom: params.YearFrom,
		YearTo:   params.YearTo,
		Sort:     params.Sort,
		Order:    params.Order,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	items, total, err := s.Store.ListBooks(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err, "unable to list books")
		return
	}
	if items == nil {
		items = []Book{}
	}
	c.JSON(http.StatusOK, Paginated{
		Items:    items,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	})
}

// GetBook returns one book by its book_id.
func (s *Service) GetBook(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	s.hit("books:get")

	book, err := s.Store.GetBook(c.Request.Context(), bookID)
	if err != nil {
		s.fail(c, err, "unable to fetch book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetBookTags joins books -> book_tags -> tags, most-shelved first.
func (s *Service) GetBookTags(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	s.hit("books:tags")

	tags, err := s.Store.BookTags(c.Request.Context(), bookID)
	if err != nil {
		s.fail(c, err, "unable to fetch book tags")
		return
	}
	if tags == nil {
		tags = []TagCount{}
	}
	c.JSON(http.StatusOK, gin.H{"book_id": bookID, "tags": tags})
}

// GetAuthorBooks lists an author's books, capped at authorBooksLimit.
func (s *Service) GetAuthorBooks(c *gin.Context) {
	author := c.Param("author_name")
	if author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "author name is empty", "code": "empty_author_name"})
		return
	}
	s.hit("authors:books")

	items, err := s.Store.AuthorBooks(c.Request.Context(), author, authorBooksLimit)
	if err != nil {
		s.fail(c, err, "unable to fetch author books")
		return
	}
	if items == nil {
		items = []Book{}
	}
	c.JSON(http.StatusOK, gin.H{"author": author, "count": len(items), "books": items})
}

type listTagsParams struct {
	Page     int64 `form:"page,default=1" binding:"gte=1"`
	PageSize int64 `form:"page_size,default=50" binding:"gte=1,lte=500"`
}

// ListTags pages through the tag catalogue.
func (s *Service) ListTags(c *gin.Context) {
	var params listTagsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		e := apperr.FromValidation(err)
		c.JSON(apperr.Status(e), apperr.Payload(e))
		return
	}
	s.hit("tags:list")

	items, total, err := s.Store.ListTags(c.Request.Context(), params.Page, params.PageSize)
	if err != nil {
		s.fail(c, err, "unable to list tags")
		return
	}
	if items == nil {
		items = []Tag{}
	}
	c.JSON(http.StatusOK, Paginated{
		Items:    items,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// pathID parses a numeric path segment, answering 400 itself on junk input.
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": name + " must be an integer",
			"code":    "invalid_" + name,
		})
		return 0, false
	}
	return id, true
}
