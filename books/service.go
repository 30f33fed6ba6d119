package books

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"

	"github.com/goodbooks/goodbooks-api/apperr"
)

// Service glues the document store, the cache and the logger behind the
// HTTP handlers.
type Service struct {
	Store  Store
	Redis  *redis.Client
	Logger *logrus.Logger
}

// Healthz reports whether the document store answers a ping.
func (s *Service) Healthz(c *gin.Context) {
	if err := s.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "connected"})
}

// Stats serves the dataset counters.
func (s *Service) Stats(c *gin.Context) {
	stats, err := s.Store.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err, "unable to count collections")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// hit bumps a per-endpoint redis counter. Purely advisory; a dead redis
// never fails the request.
func (s *Service) hit(counter string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Incr("goodbooks:" + counter + ":hits").Err(); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"counter": counter,
			"message": err.Error(),
		}).Debug("unable to increment redis counter")
	}
}

func (s *Service) fail(c *gin.Context, err error, details string) {
	s.Logger.WithFields(logrus.Fields{
		"error":   err.Error(),
		"details": details,
	}).Error("store error")
	c.JSON(apperr.Status(err), apperr.Payload(err))
}
