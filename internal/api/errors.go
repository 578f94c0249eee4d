package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rongwang/estate-registry/internal/models"
	"github.com/rongwang/estate-registry/internal/service"
)

var registerOnce sync.Once

// useJSONFieldNames makes validation errors report the request's field names
// instead of the Go struct field names
func useJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// bindError answers a request whose body or query could not be bound
func (h *Handler) bindError(c *gin.Context, err error) {
	fields := map[string]string{}

	var vErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &vErrs):
		for _, fe := range vErrs {
			fields[fe.Field()] = describe(fe)
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		fields[typeErr.Field] = "has the wrong type"
	default:
		fields["body"] = err.Error()
	}

	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request",
		Fields:  fields,
	})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}

// handleError maps service errors onto HTTP responses
func (h *Handler) handleError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	var nfErr *service.NotFoundError
	var authErr *service.AuthError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request",
			Fields:  vErr.Fields,
		})
	case errors.As(err, &nfErr):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Code:    "NOT_FOUND",
			Message: nfErr.Error(),
		})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Status:  "error",
			Code:    "UNAUTHORIZED",
			Message: authErr.Error(),
		})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		})
	}
}
