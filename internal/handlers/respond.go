package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type listResponse[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

// respondError maps the error taxonomy onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		verr *apperrors.ValidationError
		ref  *apperrors.ReferenceError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: verr.Fields})
	case errors.As(err, &ref):
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Referenced object does not exist",
			Details: map[string]string{ref.Field: "Invalid pk - object does not exist."},
		})
	case errors.Is(err, apperrors.ErrReferenceNotFound):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Referenced object does not exist"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "Not found"})
	case errors.Is(err, apperrors.ErrDuplicateOrderNumber):
		c.JSON(http.StatusConflict, errorResponse{Error: "Order number already taken, please retry"})
	case errors.Is(err, apperrors.ErrUniqueViolation):
		c.JSON(http.StatusConflict, errorResponse{Error: "A record with these values already exists"})
	case errors.Is(err, apperrors.ErrReferenced):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse{Error: "Permission denied"})
	default:
		logger.FromContext(c.Request.Context(), h.log).Error("request failed",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

// respondBindError turns JSON decoding and binding tag failures into a 400 with field detail.
func respondBindError(c *gin.Context, err error) {
	var (
		fieldErrs validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &fieldErrs):
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fieldPath(fe)] = fieldMessage(fe)
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: details})
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: map[string]string{typeErr.Field: "has the wrong type"},
		})
	case errors.As(err, &syntaxErr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Malformed JSON"})
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request format", Details: map[string]string{"body": err.Error()}})
	}
}

// fieldPath drops the struct name from the namespace: "orderRequest.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case uaePhoneTag:
		return "Phone number must be in UAE format"
	default:
		return "is invalid"
	}
}
