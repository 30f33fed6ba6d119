package books

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/goodbooks/goodbooks-api/apperr"
)

var errPingFailed = errors.New("server selection timeout")

type fakeStore struct {
	books    map[int64]Book
	tags     []Tag
	bookTags map[int64][]TagCount
	toRead   map[int64][]Book
	ratings  map[[2]int64]int
	pingErr  error
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:    map[int64]Book{},
		bookTags: map[int64][]TagCount{},
		toRead:   map[int64][]Book{},
		ratings:  map[[2]int64]int{},
	}
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) ListBooks(ctx context.Context, q BookQuery) ([]Book, int64, error) {
	if f.failWith != nil {
		return nil, 0, f.failWith
	}
	var items []Book
	for _, b := range f.books {
		items = append(items, b)
	}
	return items, int64(len(items)), nil
}

func (f *fakeStore) GetBook(ctx context.Context, bookID int64) (*Book, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	b, ok := f.books[bookID]
	if !ok {
		return nil, apperr.ErrBookNotFound
	}
	return &b, nil
}

func (f *fakeStore) BookTags(ctx context.Context, bookID int64) ([]TagCount, error) {
	if _, ok := f.books[bookID]; !ok {
		return nil, apperr.ErrBookNotFound
	}
	return f.bookTags[bookID], nil
}

func (f *fakeStore) AuthorBooks(ctx context.Context, author string, limit int64) ([]Book, error) {
	var items []Book
	for _, b := range f.books {
		items = append(items, b)
		if int64(len(items)) >= limit {
			break
		}
	}
	return items, nil
}

func (f *fakeStore) ListTags(ctx context.Context, page, pageSize int64) ([]Tag, int64, error) {
	return f.tags, int64(len(f.tags)), nil
}

func (f *fakeStore) ToRead(ctx context.Context, userID int64) ([]Book, error) {
	return f.toRead[userID], nil
}

func (f *fakeStore) RatingSummary(ctx context.Context, bookID int64) (*RatingSummary, error) {
	summary := &RatingSummary{BookID: bookID, Histogram: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int
	for key, r := range f.ratings {
		if key[1] != bookID {
			continue
		}
		summary.Count++
		summary.Histogram[r]++
		sum += r
	}
	if summary.Count > 0 {
		summary.Average = float64(sum) / float64(summary.Count)
	}
	return summary, nil
}

func (f *fakeStore) UpsertRating(ctx context.Context, r Rating) (*RatingResult, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	key := [2]int64{r.UserID, r.BookID}
	_, existed := f.ratings[key]
	f.ratings[key] = r.Rating
	result := &RatingResult{Upserted: !existed}
	if existed {
		result.Matched = 1
	}
	return result, nil
}

func (f *fakeStore) Stats(ctx context.Context) (*DatasetStats, error) {
	users := map[int64]struct{}{}
	for key := range f.ratings {
		users[key[0]] = struct{}{}
	}
	return &DatasetStats{
		BooksCount:   int64(len(f.books)),
		RatingsCount: int64(len(f.ratings)),
		UsersCount:   int64(len(users)),
	}, nil
}

type testEnv struct {
	Store   *fakeStore
	Service *Service
	Router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fake := newFakeStore()
	svc := &Service{Store: fake, Logger: logger}

	router := gin.New()
	return &testEnv{Store: fake, Service: svc, Router: router}
}

func seedBook(env *testEnv, id int64, title, authors string) Book {
	book := Book{
		BookID:          id,
		GoodreadsBookID: id * 10,
		Title:           title,
		Authors:         authors,
		AverageRating:   4.2,
		RatingsCount:    100,
		ImageURL:        "https://images.example.com/book.jpg",
	}
	env.Store.books[id] = book
	return book
}
