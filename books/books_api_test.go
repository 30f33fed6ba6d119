package books

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestService_ListBooks(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/books", env.Service.ListBooks)
	seedBook(env, 1, "The Hobbit", "J.R.R. Tolkien")
	seedBook(env, 2, "The Silmarillion", "J.R.R. Tolkien")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/books?page=1&page_size=10", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected: %d, got: %d", 200, w.Code)
	}
	var payload struct {
		Items    []Book `json:"items"`
		Page     int64  `json:"page"`
		PageSize int64  `json:"page_size"`
		Total    int64  `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 2 {
		t.Errorf("expected total 2, got %d", payload.Total)
	}
	if payload.Page != 1 || payload.PageSize != 10 {
		t.Errorf("unexpected paging echo: page=%d page_size=%d", payload.Page, payload.PageSize)
	}
}

func TestService_ListBooks_EmptyDataset(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/books", env.Service.ListBooks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/books", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected: %d, got: %d", 200, w.Code)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// items must be an empty array, never null
	if string(payload["items"]) != "[]" {
		t.Errorf("expected items [], got %s", payload["items"])
	}
}

func TestService_ListBooks_InvalidParams(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/books", env.Service.ListBooks)

	cases := []struct {
		name      string
		query     string
		wantField string
	}{
		{"bad sort", "/books?sort=publisher", "sort"},
		{"bad order", "/books?order=sideways", "order"},
		{"zero page", "/books?page=0", "page"},
		{"oversized page", "/books?page_size=1000", "page_size"},
		{"min_avg above scale", "/books?min_avg=9", "min_avg"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.query, nil)
			env.Router.ServeHTTP(w, req)
			if w.Code != 400 {
				t.Errorf("expected: %d, got: %d", 400, w.Code)
			}
			var payload struct {
				Code   string            `json:"code"`
				Fields map[string]string `json:"fields"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if payload.Code != "validation_error" {
				t.Errorf("expected validation_error, got %v", payload.Code)
			}
			if _, ok := payload.Fields[tt.wantField]; !ok {
				t.Errorf("expected a %q field message, got %v", tt.wantField, payload.Fields)
			}
		})
	}
}

func TestService_GetBook(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/books/:book_id", env.Service.GetBook)
	seedBook(env, 7, "Dune", "Frank Herbert")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/books/7", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected: %d, got: %d", 200, w.Code)
	}
	var book Book
	if err := json.Unmarshal(w.Body.Bytes(), &book); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if book.Title != "Dune" {
		t.Errorf("expected Dune, got %q", book.Title)
	}
}

func TestService_GetBook_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/books/:book_id", env.Service.GetBook)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/books/404404", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 404 {
		t.Fatalf("expected: %d, got: %d", 404, w.Code)
	}
}

func TestService_GetBook_BadID(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/books/:book_id", env.Service.GetBook)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/books/not-a-number", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 400 {
		t.Fatalf("expected: %d, got: %d", 400, w.Code)
	}
}

func TestService_GetBookTags(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/books/:book_id/tags", env.Service.GetBookTags)
	seedBook(env, 3, "Neuromancer", "William Gibson")
	env.Store.bookTags[3] = []TagCount{
		{TagID: 11, Count: 120, TagName: "cyberpunk"},
		{TagID: 12, Count: 40, TagName: "sci-fi"},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/books/3/tags", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected: %d, got: %d", 200, w.Code)
	}
	var payload struct {
		BookID int64      `json:"book_id"`
		Tags   []TagCount `json:"tags"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Tags) != 2 || payload.Tags[0].TagName != "cyberpunk" {
		t.Errorf("unexpected tags payload: %+v", payload.Tags)
	}
}

func TestService_GetBookTags_MissingBook(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/books/:book_id/tags", env.Service.GetBookTags)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/books/9/tags", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 404 {
		t.Fatalf("expected: %d, got: %d", 404, w.Code)
	}
}

func TestService_GetAuthorBooks(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/authors/:author_name/books", env.Service.GetAuthorBooks)
	seedBook(env, 1, "The Hobbit", "J.R.R. Tolkien")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/authors/tolkien/books", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected: %d, got: %d", 200, w.Code)
	}
	var payload struct {
		Author string `json:"author"`
		Count  int    `json:"count"`
		Books  []Book `json:"books"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Author != "tolkien" || payload.Count != 1 {
		t.Errorf("unexpected author payload: %+v", payload)
	}
}

func TestService_ListTags(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/tags", env.Service.ListTags)
	env.Store.tags = []Tag{{TagID: 1, TagName: "fantasy"}, {TagID: 2, TagName: "history"}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tags", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected: %d, got: %d", 200, w.Code)
	}
	var payload struct {
		Items []Tag `json:"items"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 2 {
		t.Errorf("expected total 2, got %d", payload.Total)
	}
}

func TestService_Healthz(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/healthz", env.Service.Healthz)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected: %d, got: %d", 200, w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["status"] != "ok" || payload["db"] != "connected" {
		t.Errorf("unexpected health payload: %v", payload)
	}
}

func TestService_Healthz_DBDown(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/healthz", env.Service.Healthz)
	env.Store.pingErr = errPingFailed

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 503 {
		t.Fatalf("expected: %d, got: %d", 503, w.Code)
	}
}

func TestService_Stats(t *testing.T) {
	env := newTestEnv(t)
	env.Router.GET("/stats", env.Service.Stats)
	seedBook(env, 1, "The Hobbit", "J.R.R. Tolkien")
	env.Store.ratings[[2]int64{10, 1}] = 5
	env.Store.ratings[[2]int64{11, 1}] = 4

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/stats", nil)
	env.Router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected: %d, got: %d", 200, w.Code)
	}
	var stats DatasetStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.BooksCount != 1 || stats.RatingsCount != 2 || stats.UsersCount != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
