// Package books carries the GoodBooks-10k domain types and the HTTP service
// that serves them.
package books

import "context"

// Book mirrors one row of the goodbooks-10k books sample.
type Book struct {
	BookID                   int64   `json:"book_id" bson:"book_id"`
	GoodreadsBookID          int64   `json:"goodreads_book_id" bson:"goodreads_book_id"`
	Title                    string  `json:"title" bson:"title"`
	Authors                  string  `json:"authors" bson:"authors"`
	OriginalPublicationYear  float64 `json:"original_publication_year,omitempty" bson:"original_publication_year,omitempty"`
	AverageRating            float64 `json:"average_rating" bson:"average_rating"`
	RatingsCount             int64   `json:"ratings_count" bson:"ratings_count"`
	ImageURL                 string  `json:"image_url" bson:"image_url"`
}

// Tag is a goodreads shelf name.
type Tag struct {
	TagID   int64  `json:"tag_id" bson:"tag_id"`
	TagName string `json:"tag_name" bson:"tag_name"`
}

// TagCount is a tag applied to a book, with how many users shelved it.
type TagCount struct {
	TagID   int64  `json:"tag_id" bson:"tag_id"`
	Count   int64  `json:"count" bson:"count"`
	TagName string `json:"tag_name" bson:"tag_name"`
}

// Rating is a single user's 1..5 score for a book. The store keeps one per
// (user_id, book_id).
type Rating struct {
	UserID int64 `json:"user_id" bson:"user_id"`
	BookID int64 `json:"book_id" bson:"book_id"`
	Rating int   `json:"rating" bson:"rating"`
}

// RatingResult reports what an upsert did.
type RatingResult struct {
	Upserted bool  `json:"upserted"`
	Matched  int64 `json:"matched"`
}

// RatingSummary aggregates a book's ratings.
type RatingSummary struct {
	BookID    int64         `json:"book_id"`
	Average   float64       `json:"average"`
	Count     int64         `json:"count"`
	Histogram map[int]int64 `json:"histogram"`
}

// Paginated is the list envelope shared by /books and /tags.
type Paginated struct {
	Items    any   `json:"items"`
	Page     int64 `json:"page"`
	PageSize int64 `json:"page_size"`
	Total    int64 `json:"total"`
}

// DatasetStats backs GET /stats.
type DatasetStats struct {
	BooksCount   int64 `json:"books_count"`
	RatingsCount int64 `json:"ratings_count"`
	UsersCount   int64 `json:"users_count"`
}

// BookQuery carries the validated /books filters.
type BookQuery struct {
	Q        string
	MinAvg   float64
	YearFrom int
	YearTo   int
	Sort     string
	Order    string
	Page     int64
	PageSize int64
}

// Store is the document-store surface the handlers need. *store.Store is the
// production implementation.
type Store interface {
	Ping(ctx context.Context) error
	ListBooks(ctx context.Context, q BookQuery) ([]Book, int64, error)
	GetBook(ctx context.Context, bookID int64) (*Book, error)
	BookTags(ctx context.Context, bookID int64) ([]TagCount, error)
	AuthorBooks(ctx context.Context, author string, limit int64) ([]Book, error)
	ListTags(ctx context.Context, page, pageSize int64) ([]Tag, int64, error)
	ToRead(ctx context.Context, userID int64) ([]Book, error)
	RatingSummary(ctx context.Context, bookID int64) (*RatingSummary, error)
	UpsertRating(ctx context.Context, r Rating) (*RatingResult, error)
	Stats(ctx context.Context) (*DatasetStats, error)
}
