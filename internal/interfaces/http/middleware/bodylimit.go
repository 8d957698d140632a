package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the request body size. Oversized payloads fail inside
// the JSON decoder, which handlers surface as a 400; the Content-Length
// fast path below answers large uploads without reading them.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Request body too large", c.GetString(RequestIDHeader)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
