package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/backend/internal/dto"
	"github.com/taskhive/backend/internal/errs"
)

// respondError maps a service error onto the uniform error envelope.
func respondError(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), dto.ErrorResponse{
		Error: err.Error(),
		Code:  errs.Code(err),
	})
}

// respondBindError reports a request body that failed validation.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}
