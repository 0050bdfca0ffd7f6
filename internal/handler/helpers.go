package handler

import (
	"errors"
	"net/http"

	"github.com/nazim1903/Businesstracker/internal/apierror"
	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if fields := dto.Validate(req); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return true
}

// pathID parses the :id parameter.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps engine errors to status codes. Anything unrecognized is
// handed to middleware.ErrorHandler as a 500.
func respondError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		nerr *service.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(verr.Fields))
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, apierror.WithCode("not_found", nerr.Error()))
	case errors.Is(err, service.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, apierror.WithCode("already_completed", err.Error()))
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, apierror.WithCode("invalid_state", err.Error()))
	case errors.Is(err, service.ErrAtomicity):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, apierror.WithCode("retryable", "the change could not be applied, retry"))
	default:
		_ = c.Error(err)
	}
}
