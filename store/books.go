package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goodbooks/goodbooks-api/apperr"
	"github.com/goodbooks/goodbooks-api/books"
)

// ListBooks filters, sorts and pages the catalogue.
func (s *Store) ListBooks(ctx context.Context, q books.BookQuery) ([]books.Book, int64, error) {
	col := s.db.Collection(colBooks)
	filter := buildBookFilter(q)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.ErrDatabase, "unable to count books")
	}

	opts := options.Find().
		SetSort(buildBookSort(q)).
		SetSkip((q.Page - 1) * q.PageSize).
		SetLimit(q.PageSize).
		SetProjection(bson.M{"_id": 0})

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.ErrDatabase, "unable to query books")
	}
	var items []books.Book
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, apperr.Wrap(err, apperr.ErrDatabase, "unable to decode books")
	}
	return items, total, nil
}

// GetBook fetches one book by book_id.
func (s *Store) GetBook(ctx context.Context, bookID int64) (*books.Book, error) {
	var book books.Book
	err := s.db.Collection(colBooks).FindOne(ctx,
		bson.M{"book_id": bookID},
		options.FindOne().SetProjection(bson.M{"_id": 0}),
	).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrBookNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to fetch book")
	}
	return &book, nil
}

// BookTags resolves a book's shelves: books -> book_tags -> tags, most
// shelved first. Missing book is a not-found, not an empty list.
func (s *Store) BookTags(ctx context.Context, bookID int64) ([]books.TagCount, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "goodreads_book_id", Value: book.GoodreadsBookID}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colTags},
			{Key: "localField", Value: "tag_id"},
			{Key: "foreignField", Value: "tag_id"},
			{Key: "as", Value: "tag_info"},
		}}},
		{{Key: "$unwind", Value: "$tag_info"}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "tag_id", Value: 1},
			{Key: "count", Value: 1},
			{Key: "tag_name", Value: "$tag_info.tag_name"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	cursor, err := s.db.Collection(colBookTags).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to aggregate book tags")
	}
	var tags []books.TagCount
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to decode book tags")
	}
	return tags, nil
}

// AuthorBooks matches authors case-insensitively, capped by limit.
func (s *Store) AuthorBooks(ctx context.Context, author string, limit int64) ([]books.Book, error) {
	filter := bson.M{"authors": primitive.Regex{Pattern: author, Options: "i"}}
	opts := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{"_id": 0})

	cursor, err := s.db.Collection(colBooks).Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, fmt.Sprintf("unable to query author %q", author))
	}
	var items []books.Book
	if err := cursor.All(ctx, &items); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to decode author books")
	}
	return items, nil
}

// ListTags pages through the tag catalogue.
func (s *Store) ListTags(ctx context.Context, page, pageSize int64) ([]books.Tag, int64, error) {
	col := s.db.Collection(colTags)

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.ErrDatabase, "unable to count tags")
	}

	opts := options.Find().
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize).
		SetProjection(bson.M{"_id": 0})

	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.ErrDatabase, "unable to query tags")
	}
	var items []books.Tag
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, apperr.Wrap(err, apperr.ErrDatabase, "unable to decode tags")
	}
	return items, total, nil
}

// ToRead joins a user's to_read entries onto the books collection.
func (s *Store) ToRead(ctx context.Context, userID int64) ([]books.Book, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user_id", Value: userID}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colBooks},
			{Key: "localField", Value: "book_id"},
			{Key: "foreignField", Value: "book_id"},
			{Key: "as", Value: "book"},
		}}},
		{{Key: "$unwind", Value: "$book"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$book"}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}}}},
	}

	cursor, err := s.db.Collection(colToRead).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to aggregate to-read shelf")
	}
	var items []books.Book
	if err := cursor.All(ctx, &items); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to decode to-read shelf")
	}
	return items, nil
}
