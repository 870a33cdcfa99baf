package handlers

import (
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChainIdentifier is implemented by AirdropService.
type ChainIdentifier interface {
	ChainID() *big.Int
}

type HealthHandler struct {
	ledger ChainIdentifier
}

// NewHealthHandler reports the ledger's chain id when ledger is not nil, so a
// load balancer probe also confirms which deployment answered.
func NewHealthHandler(ledger ChainIdentifier) *HealthHandler {
	return &HealthHandler{ledger: ledger}
}

// Health godoc
// @Summary      Health check
// @Description  Liveness probe. Reports the chain id signatures must be bound to.
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	if h.ledger != nil {
		resp.ChainID = h.ledger.ChainID().String()
	}
	c.JSON(http.StatusOK, resp)
}
