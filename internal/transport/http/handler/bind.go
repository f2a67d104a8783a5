package handler

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	appsvc "pettech-backend/internal/app"
)

// bindJSON decodes the body into req and reports shape errors as validation
// failures on the offending field.
func bindJSON(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return appsvc.NewValidationError(typeErr.Field, "must be "+typeErr.Type.String())
	}
	return appsvc.NewValidationError("body", "must be a JSON object")
}
