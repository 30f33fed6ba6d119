package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const goodbooksRaw = "https://raw.githubusercontent.com/zygmuntz/goodbooks-10k/master/samples/"

const ingestBatchSize = 500

// Source describes one CSV file and the fields that make a row unique.
type Source struct {
	Collection string
	URL        string
	Keys       []string
}

// DefaultSources lists the goodbooks-10k sample files in ingestion order.
func DefaultSources(baseURL string) []Source {
	if baseURL == "" {
		baseURL = goodbooksRaw
	}
	return []Source{
		{Collection: colBooks, URL: baseURL + "books.csv", Keys: []string{"book_id"}},
		{Collection: colTags, URL: baseURL + "tags.csv", Keys: []string{"tag_id"}},
		{Collection: colRatings, URL: baseURL + "ratings.csv", Keys: []string{"user_id", "book_id"}},
		{Collection: colBookTags, URL: baseURL + "book_tags.csv", Keys: []string{"goodreads_book_id", "tag_id"}},
		{Collection: colToRead, URL: baseURL + "to_read.csv", Keys: []string{"user_id", "book_id"}},
	}
}

// IngestResult reports what a bulk ingest did.
type IngestResult struct {
	Matched  int64
	Upserted int64
}

// IngestAll downloads every source and upserts it. Idempotent: rows are
// keyed on the source's unique fields, so re-runs only refresh documents.
func (s *Store) IngestAll(ctx context.Context, logger *logrus.Logger, sources []Source) error {
	client := &http.Client{Timeout: 2 * time.Minute}
	for _, src := range sources {
		logger.WithFields(logrus.Fields{
			"collection": src.Collection,
			"url":        src.URL,
		}).Info("ingesting collection")

		body, err := fetchCSV(ctx, client, src.URL)
		if err != nil {
			return err
		}
		result, err := s.IngestCSV(ctx, src.Collection, src.Keys, body)
		body.Close()
		if err != nil {
			return fmt.Errorf("unable to ingest %s: %w", src.Collection, err)
		}

		logger.WithFields(logrus.Fields{
			"collection": src.Collection,
			"matched":    result.Matched,
			"upserted":   result.Upserted,
		}).Info("collection ingested")
	}
	return nil
}

// IngestCSV reads a header-first CSV stream and bulk-upserts each row into
// the collection, keyed on the given fields.
func (s *Store) IngestCSV(ctx context.Context, collection string, keys []string, r io.Reader) (*IngestResult, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv header: %w", err)
	}

	col := s.db.Collection(collection)
	result := &IngestResult{}
	var batch []mongo.WriteModel

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res, err := col.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return err
		}
		result.Matched += res.MatchedCount
		result.Upserted += res.UpsertedCount
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read csv row: %w", err)
		}

		doc := recordToDoc(header, record)
		filter := bson.M{}
		for _, key := range keys {
			filter[key] = doc[key]
		}

		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))

		if len(batch) >= ingestBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return result, nil
}

// recordToDoc types each cell: integers and floats become numbers, empty
// cells stay empty strings (the upstream ingest mapped NaN the same way).
func recordToDoc(header, record []string) bson.M {
	doc := bson.M{}
	for i, name := range header {
		if i >= len(record) {
			doc[name] = ""
			continue
		}
		doc[name] = parseCell(record[i])
	}
	return doc
}

func parseCell(cell string) any {
	if cell == "" {
		return ""
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}

func fetchCSV(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d downloading %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}
