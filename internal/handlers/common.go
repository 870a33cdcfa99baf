package handlers

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/middleware"
	"github.com/cyphera/cyphera-airdrop/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// errBadRequest marks request decoding failures.
var errBadRequest = chain.NewError(chain.KindInputValidation, "InvalidRequest")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

var kindStatus = map[chain.Kind]int{
	chain.KindAuthorization:   http.StatusForbidden,
	chain.KindTemporal:        http.StatusConflict,
	chain.KindProof:           http.StatusUnprocessableEntity,
	chain.KindStateConflict:   http.StatusConflict,
	chain.KindInputValidation: http.StatusBadRequest,
	chain.KindProvenance:      http.StatusForbidden,
	chain.KindCollaborator:    http.StatusBadGateway,
}

// StatusFor maps an engine error to an HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, services.ErrNotFound) {
		return http.StatusNotFound
	}
	if status, ok := kindStatus[chain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// sendError logs err and writes the error body. Named revert reasons are
// reported with their kind.
func sendError(c *gin.Context, err error) {
	status := StatusFor(err)
	log := middleware.LogWithCorrelationID(c.Request.Context()).With(
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", status),
		zap.Error(err),
	)

	resp := ErrorResponse{Error: chain.NameOf(err), Message: err.Error()}
	switch {
	case status == http.StatusNotFound:
		resp.Error = "NotFound"
	case status == http.StatusInternalServerError:
		log.Error("Request failed")
		c.JSON(status, ErrorResponse{Error: "Internal server error"})
		return
	default:
		resp.Kind = chain.KindOf(err).String()
	}
	log.Debug("Request rejected")
	c.JSON(status, resp)
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}

func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, badRequest("%s %q is not an address", field, s)
	}
	return common.HexToAddress(s), nil
}

// parseOptionalAddress returns the zero address for an empty string.
func parseOptionalAddress(field, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	return parseAddress(field, s)
}

func parseAddresses(field string, in []string) ([]common.Address, error) {
	out := make([]common.Address, len(in))
	for i, s := range in {
		addr, err := parseAddress(fmt.Sprintf("%s[%d]", field, i), s)
		if err != nil {
			return nil, err
		}
		out[i] = addr
	}
	return out, nil
}

// parseAmount parses a non-negative decimal amount.
func parseAmount(field, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, badRequest("%s %q is not a non-negative decimal", field, s)
	}
	return v, nil
}

func parseAmounts(field string, in []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(in))
	for i, s := range in {
		v, err := parseAmount(fmt.Sprintf("%s[%d]", field, i), s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseHash(field, s string) (common.Hash, error) {
	raw, err := hexutil.Decode(s)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, badRequest("%s %q is not a 32 byte hex value", field, s)
	}
	return common.BytesToHash(raw), nil
}

func parseProof(field string, in []string) ([]common.Hash, error) {
	out := make([]common.Hash, len(in))
	for i, s := range in {
		h, err := parseHash(fmt.Sprintf("%s[%d]", field, i), s)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func parseProofs(field string, in [][]string) ([][]common.Hash, error) {
	out := make([][]common.Hash, len(in))
	for i, p := range in {
		proof, err := parseProof(fmt.Sprintf("%s[%d]", field, i), p)
		if err != nil {
			return nil, err
		}
		out[i] = proof
	}
	return out, nil
}

func hashStrings(hs []common.Hash) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Hex()
	}
	return out
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// bind decodes the JSON body into req.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// callerOf returns the authenticated caller. Routes using it sit behind the
// auth middleware.
func callerOf(c *gin.Context) (common.Address, error) {
	caller, ok := middleware.Caller(c)
	if !ok {
		return common.Address{}, chain.NewError(chain.KindAuthorization, "Unauthenticated")
	}
	return caller, nil
}
