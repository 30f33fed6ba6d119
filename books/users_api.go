package books

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUserToRead returns the books on a user's to-read shelf.
func (s *Service) GetUserToRead(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	s.hit("users:to_read")

	items, err := s.Store.ToRead(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err, "unable to fetch to-read shelf")
		return
	}
	if items == nil {
		items = []Book{}
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "to_read": items})
}
