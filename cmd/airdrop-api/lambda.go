//go:build lambda
// +build lambda

package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

var ginLambda *ginadapter.GinLambda

func init() {
	logger.InitLogger(os.Getenv("STAGE"))
	app, err := newApplication(context.Background())
	if err != nil {
		logger.Fatal("Failed to initialize airdrop API", zap.Error(err))
	}
	ginLambda = ginadapter.New(app.router)
}

func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.Debug("Received Lambda request",
		zap.String("path", req.Path),
		zap.String("request", spew.Sdump(req)),
	)
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	defer logger.Sync()
	lambda.Start(Handler)
}
