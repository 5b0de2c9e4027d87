package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/content-service/internal/logger"
	logicv1 "github.com/duynhne/content-service/internal/logic/v1"
	"github.com/duynhne/content-service/internal/validation"
)

// statusFor maps an error kind to an HTTP status. Duplicates use the
// per-route duplicateStatus.
func statusFor(kind logicv1.ErrorKind, duplicateStatus int) int {
	switch kind {
	case logicv1.KindValidation:
		return http.StatusBadRequest
	case logicv1.KindDuplicate:
		return duplicateStatus
	case logicv1.KindAuthentication:
		return http.StatusUnauthorized
	case logicv1.KindAuthorization:
		return http.StatusForbidden
	case logicv1.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes the error body for its kind. Internal detail is
// only exposed outside production.
func (h *Handler) fail(c *gin.Context, span trace.Span, err error, duplicateStatus int) {
	kind := logicv1.KindOf(err)
	status := statusFor(kind, duplicateStatus)

	span.RecordError(err)
	span.SetAttributes(attribute.String("error.kind", kind.String()))

	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	} else {
		log.Warn().Err(err).Str("kind", kind.String()).Msg("Request rejected")
	}

	body := gin.H{
		"error":   http.StatusText(status),
		"message": logicv1.MessageOf(err, "Internal server error"),
	}
	if status == http.StatusInternalServerError && !h.production {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}

// bindAndValidate decodes the JSON body into req and validates it. On
// failure it writes the 400 response and returns false.
func bindAndValidate(c *gin.Context, span trace.Span, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		err = validation.Struct(req)
	}
	if err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.FromContext(c.Request.Context()).Debug().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation Error",
			"details": validation.Details(err),
		})
		return false
	}
	span.SetAttributes(attribute.Bool("request.valid", true))
	return true
}

// idParam parses the named path parameter as a positive id.
func idParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   http.StatusText(http.StatusBadRequest),
			"message": fmt.Sprintf("Invalid %s id", label),
		})
		return 0, false
	}
	return id, true
}

// pageQuery reads page and limit, defaulting to 1 and 10.
func pageQuery(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(logicv1.DefaultPage)))
	if err != nil {
		return 0, 0, fmt.Errorf("parse page: %w", logicv1.ErrInvalidPage)
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(logicv1.DefaultLimit)))
	if err != nil {
		return 0, 0, fmt.Errorf("parse limit: %w", logicv1.ErrInvalidPage)
	}
	return page, limit, nil
}
