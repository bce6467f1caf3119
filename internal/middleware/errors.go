package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/margintrend/internal/domain/dto"
)

// ErrorHandler turns errors attached with c.Error into a 500 ErrorResponse
// when the handler did not write a response itself.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	last := c.Errors.Last()
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", last.Err))
}

// AbortWithError records err on the context and stops the chain with a JSON
// ErrorResponse carrying status and message. err may be nil.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
