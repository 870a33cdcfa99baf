//go:build !lambda
// +build !lambda

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
	"github.com/cyphera/cyphera-airdrop/internal/server"
)

// @title           Airdrop API
// @version         1.0
// @description     Merkle airdrop campaigns with vesting locks and signed vote delegation.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger.InitLogger(os.Getenv("STAGE"))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx)
	if err != nil {
		logger.Fatal("Failed to start airdrop API", zap.Error(err))
	}
	defer logger.Sync()
	defer app.Close()

	if err := server.New(app.cfg.HTTP.Port, app.router).Run(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
