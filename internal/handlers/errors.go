package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tacotally/taco_tally_app/internal/apperrors"
)

// respondError maps core error kinds to HTTP responses. Every kind stays
// distinguishable so callers can choose differentiated behavior.
func respondError(c *gin.Context, err error) {
	var quotaErr *apperrors.QuotaExceededError
	var partialErr *apperrors.PartialApplicationError

	switch {
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "Daily taco quota exceeded",
			"remaining": quotaErr.Remaining,
		})
	case errors.As(err, &partialErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":         "Transaction recorded but effects not fully applied",
			"transactionID": partialErr.TransactionID,
		})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, apperrors.ErrNoUsers):
		c.JSON(http.StatusNotFound, gin.H{"error": "No users to rank against"})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
