package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goodbooks/goodbooks-api/books"
)

// sortFields maps API sort keys to document fields.
var sortFields = map[string]string{
	"avg":           "average_rating",
	"ratings_count": "ratings_count",
	"year":          "original_publication_year",
	"title":         "title",
}

// buildBookFilter translates the validated query params into a mongo filter.
// Zero values mean "not set", matching the upstream API's semantics.
func buildBookFilter(q books.BookQuery) bson.M {
	filter := bson.M{}

	if q.Q != "" {
		pattern := primitive.Regex{Pattern: q.Q, Options: "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"authors": pattern},
		}
	}

	if q.MinAvg > 0 {
		filter["average_rating"] = bson.M{"$gte": q.MinAvg}
	}

	if q.YearFrom > 0 || q.YearTo > 0 {
		year := bson.M{}
		if q.YearFrom > 0 {
			year["$gte"] = q.YearFrom
		}
		if q.YearTo > 0 {
			year["$lte"] = q.YearTo
		}
		filter["original_publication_year"] = year
	}

	return filter
}

// buildBookSort resolves the sort document. Unknown keys fall back to
// average rating; the params are validated upstream anyway.
func buildBookSort(q books.BookQuery) bson.D {
	field, ok := sortFields[q.Sort]
	if !ok {
		field = "average_rating"
	}
	order := -1
	if q.Order == "asc" {
		order = 1
	}
	return bson.D{{Key: field, Value: order}}
}
