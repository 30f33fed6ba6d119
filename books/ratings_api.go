package books

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"

	"github.com/goodbooks/goodbooks-api/apperr"
	"github.com/goodbooks/goodbooks-api/utils"
)

const summaryCacheTTL = 5 * time.Minute

func summaryCacheKey(bookID int64) string {
	return "goodbooks:ratings:summary:" + formatID(bookID)
}

// GetRatingSummary serves a book's average, count and 1..5 histogram. The
// summary is cached in redis and invalidated by upserts.
func (s *Service) GetRatingSummary(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	s.hit("ratings:summary")

	if cached := s.cachedSummary(bookID); cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	summary, err := s.Store.RatingSummary(c.Request.Context(), bookID)
	if err != nil {
		s.fail(c, err, "unable to aggregate ratings")
		return
	}
	s.cacheSummary(summary)
	c.JSON(http.StatusOK, summary)
}

// ratingIn is the write payload. The ids are pointers so that 0 is a
// present, valid id rather than a missing field.
type ratingIn struct {
	UserID *int64 `json:"user_id" binding:"required"`
	BookID *int64 `json:"book_id" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

// UpsertRating writes one user's rating for a book, keyed on user+book.
// Guarded by the API key middleware upstream.
func (s *Service) UpsertRating(c *gin.Context) {
	var in ratingIn
	if err := c.ShouldBindWith(&in, binding.JSON); err != nil {
		e := apperr.FromValidation(err)
		c.JSON(apperr.Status(e), apperr.Payload(e))
		return
	}
	fields := Rating{UserID: *in.UserID, BookID: *in.BookID, Rating: in.Rating}

	result, err := s.Store.UpsertRating(c.Request.Context(), fields)
	if err != nil {
		s.fail(c, err, "unable to upsert rating")
		return
	}
	s.hit("ratings:upsert")
	s.dropSummary(fields.BookID)

	c.JSON(http.StatusOK, result)
}

func (s *Service) cachedSummary(bookID int64) *RatingSummary {
	if s.Redis == nil {
		return nil
	}
	var summary RatingSummary
	err := utils.GetJSON(s.Redis, summaryCacheKey(bookID), &summary)
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"book_id": bookID,
			"message": err.Error(),
		}).Debug("unable to read summary cache")
		return nil
	}
	return &summary
}

func (s *Service) cacheSummary(summary *RatingSummary) {
	if s.Redis == nil || summary == nil {
		return
	}
	if err := utils.SetJSON(s.Redis, summaryCacheKey(summary.BookID), summary, summaryCacheTTL); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"book_id": summary.BookID,
			"message": err.Error(),
		}).Debug("unable to write summary cache")
	}
}

func (s *Service) dropSummary(bookID int64) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(summaryCacheKey(bookID)).Err(); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"book_id": bookID,
			"message": err.Error(),
		}).Debug("unable to invalidate summary cache")
	}
}
