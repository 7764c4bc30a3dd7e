package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleProcessorWebhook receives processor events. Anything past signature
// verification is acknowledged with 200 regardless of handler outcome; the
// processor retries only what it never saw acknowledged.
func (s *Server) HandleProcessorWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sigHeader := c.GetHeader("Processor-Signature")
	if err := s.webhookSvc.Dispatch(c.Request.Context(), payload, sigHeader); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
