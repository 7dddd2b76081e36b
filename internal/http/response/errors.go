package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldErrorsEnvelope carries per-field validation messages.
type FieldErrorsEnvelope struct {
	Errors map[string]string `json:"errors"`
}

func RespondFieldErrors(c *gin.Context, errs map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, FieldErrorsEnvelope{Errors: errs})
}

func AbortError(c *gin.Context, status int, code string, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}
