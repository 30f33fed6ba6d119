package store

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goodbooks/goodbooks-api/apperr"
	"github.com/goodbooks/goodbooks-api/books"
)

// RatingSummary computes a book's average, count and 1..5 histogram in one
// aggregation. A book with no ratings yields a zero-valued summary.
func (s *Store) RatingSummary(ctx context.Context, bookID int64) (*books.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "book_id", Value: bookID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$book_id"},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "distribution", Value: bson.D{{Key: "$push", Value: "$rating"}}},
		}}},
	}

	cursor, err := s.db.Collection(colRatings).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to aggregate ratings")
	}

	var rows []struct {
		Average      float64 `bson:"average"`
		Count        int64   `bson:"count"`
		Distribution []int   `bson:"distribution"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to decode rating summary")
	}

	summary := &books.RatingSummary{BookID: bookID, Histogram: map[int]int64{}}
	if len(rows) == 0 {
		return summary, nil
	}

	row := rows[0]
	summary.Average = math.Round(row.Average*100) / 100
	summary.Count = row.Count
	for star := 1; star <= 5; star++ {
		summary.Histogram[star] = 0
	}
	for _, r := range row.Distribution {
		if r >= 1 && r <= 5 {
			summary.Histogram[r]++
		}
	}
	return summary, nil
}

// UpsertRating writes one rating keyed on (user_id, book_id).
func (s *Store) UpsertRating(ctx context.Context, r books.Rating) (*books.RatingResult, error) {
	res, err := s.db.Collection(colRatings).UpdateOne(ctx,
		bson.M{"user_id": r.UserID, "book_id": r.BookID},
		bson.M{"$set": bson.M{"rating": r.Rating}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to upsert rating")
	}
	return &books.RatingResult{
		Upserted: res.UpsertedCount > 0,
		Matched:  res.MatchedCount,
	}, nil
}

// Stats counts the dataset for GET /stats.
func (s *Store) Stats(ctx context.Context) (*books.DatasetStats, error) {
	booksCount, err := s.db.Collection(colBooks).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to count books")
	}
	ratingsCount, err := s.db.Collection(colRatings).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to count ratings")
	}
	users, err := s.db.Collection(colRatings).Distinct(ctx, "user_id", bson.M{})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to count distinct users")
	}
	return &books.DatasetStats{
		BooksCount:   booksCount,
		RatingsCount: ratingsCount,
		UsersCount:   int64(len(users)),
	}, nil
}
