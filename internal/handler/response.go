package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/havenpath/service-placement/internal/domain"
	bookingDomain "github.com/havenpath/service-placement/internal/domain/booking"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func respondPaginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// respondError maps domain errors to HTTP responses. Date-range operations
// (creation, extension) get pluralised conflict messaging; single-date
// operations should use respondSingleDateError instead.
func respondError(c *gin.Context, err error) {
	respondClassifiedError(c, err, true)
}

func respondSingleDateError(c *gin.Context, err error) {
	respondClassifiedError(c, err, false)
}

func respondClassifiedError(c *gin.Context, err error, dateRange bool) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body := gin.H{"error": ve.Message}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		if ve.Code != "" {
			body["code"] = ve.Code
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	var nfe *domain.NotFoundError
	if errors.As(err, &nfe) {
		c.JSON(http.StatusNotFound, gin.H{"error": nfe.Error()})
		return
	}

	var ise *domain.InvalidStateError
	if errors.As(err, &ise) {
		c.JSON(http.StatusConflict, gin.H{"error": ise.Error()})
		return
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		// Only date clashes carry a classifiable detail string; lock
		// conflicts surface as a plain 409.
		if ce.Kind == domain.ConflictDates {
			descriptor := bookingDomain.ParseConflict(ce.Detail)
			c.JSON(http.StatusConflict, gin.H{
				"error":    descriptor.Message(dateRange),
				"conflict": descriptor,
			})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": ce.Error()})
		return
	}

	var be *domain.BlockedError
	if errors.As(err, &be) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                     "the bedspace cannot be archived on this date",
			"blocking_date":             be.BlockingDate,
			"blocking_entity_id":        be.BlockingEntityID,
			"blocking_entity_reference": be.BlockingEntityReference,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
