package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"sku-pricing/internal/api/models"
	"sku-pricing/internal/backtest"
	"sku-pricing/internal/model"
	"sku-pricing/internal/store"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeDomainError maps known sentinel errors onto client errors; anything
// else is a 500.
func writeDomainError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, model.ErrInvalidRow):
		writeError(c, http.StatusBadRequest, "INVALID_PANEL", err.Error())
	case errors.Is(err, backtest.ErrEmptyPanel):
		writeError(c, http.StatusBadRequest, "EMPTY_PANEL", err.Error())
	case errors.Is(err, backtest.ErrNoStaticBaseline):
		writeError(c, http.StatusBadRequest, "NO_BASELINE", err.Error())
	case eris.Is(err, store.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
