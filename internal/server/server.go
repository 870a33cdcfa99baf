// Package server wires the airdrop handlers into a gin engine and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/cyphera/cyphera-airdrop/docs"
	"github.com/cyphera/cyphera-airdrop/internal/constants"
	"github.com/cyphera/cyphera-airdrop/internal/handlers"
	"github.com/cyphera/cyphera-airdrop/internal/logger"
	"github.com/cyphera/cyphera-airdrop/internal/middleware"
)

const shutdownTimeout = 15 * time.Second

// Options configure the router.
type Options struct {
	Service      handlers.AirdropService
	Auth         *middleware.Authenticator
	Limiter      *middleware.RateLimiter
	AllowOrigins []string
	// Swagger serves the API docs under /swagger.
	Swagger bool
}

// NewRouter builds the engine. Reads are public; every mutating route needs
// a caller token.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(configureCORS(opts.AllowOrigins))
	if opts.Limiter != nil {
		router.Use(opts.Limiter.Middleware())
	}

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET(constants.HealthPath, handlers.NewHealthHandler(opts.Service).Health)

	airdrop := handlers.NewAirdropHandler(opts.Service)

	v1 := router.Group(constants.APIVersionPrefix)
	{
		v1.GET("/deployment", airdrop.GetDeployment)
		v1.GET("/events", airdrop.ListEvents)
		v1.POST("/merkle/proofs", airdrop.BuildProofs)

		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("/init-data", airdrop.EncodeInitData)
			campaigns.POST("/predict", airdrop.PredictCampaign)
			campaigns.GET("/:address", airdrop.GetCampaign)
			campaigns.GET("/:address/redeemed", airdrop.IsRedeemed)
		}

		tokens := v1.Group("/tokens")
		{
			tokens.GET("/:address/balances/:account", airdrop.GetBalance)
			tokens.GET("/:address/delegates/:account", airdrop.GetDelegate)
		}

		v1.GET("/locks/:address", airdrop.GetLock)

		protected := v1.Group("")
		protected.Use(opts.Auth.Middleware())
		{
			protected.POST("/campaigns", airdrop.CreateCampaign)
			protected.POST("/campaigns/:address/redeem", airdrop.Redeem)
			protected.POST("/redeem/batch", airdrop.RedeemBatch)
			protected.POST("/redeem/batch/delegate", airdrop.RedeemAndDelegate)
			protected.POST("/withdraw", airdrop.Withdraw)
			protected.POST("/tokens/mint", airdrop.Mint)
		}
	}

	return router
}

// configureCORS returns a configured CORS middleware
func configureCORS(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", constants.AuthorizationHeader, constants.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{constants.CorrelationIDHeader, "Retry-After"}
	return cors.New(corsConfig)
}

// Server runs a router until its context is canceled.
type Server struct {
	http *http.Server
	log  *logger.StructuredLogger
}

func New(port int, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger.NewStructuredLogger(logger.ComponentServer),
	}
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.http.Addr).Info("Server starting")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("Server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
