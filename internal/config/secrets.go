package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

// SecretsAPI is the subset of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerClient wraps the AWS Secrets Manager client.
type SecretsManagerClient struct {
	svc SecretsAPI
}

// NewSecretsManagerClient creates a client from an AWS configuration, see
// LoadAWSConfig.
func NewSecretsManagerClient(cfg aws.Config) *SecretsManagerClient {
	return &SecretsManagerClient{svc: secretsmanager.NewFromConfig(cfg)}
}

// LoadAWSConfig resolves the default AWS configuration chain (environment
// variables, shared config, IAM role). Static keys and an endpoint in c
// take precedence.
func LoadAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	if c.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(c.EndpointURL)
	}
	return cfg, nil
}

// NewSecretsManagerClientWithAPI wraps an existing API implementation.
func NewSecretsManagerClientWithAPI(svc SecretsAPI) *SecretsManagerClient {
	return &SecretsManagerClient{svc: svc}
}

// GetSecretString fetches secretArn from Secrets Manager. A secret stored as a
// JSON object with a single key yields that key's value; anything else is
// returned verbatim. When the ARN is empty or the fetch fails, fallback is used
// if non-empty.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArn, fallback string) (string, error) {
	if secretArn != "" {
		logger.Log.Debug("Attempting to fetch secret from Secrets Manager", zap.String("secretArn", secretArn))
		result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretArn),
		})
		if err == nil && result.SecretString != nil && *result.SecretString != "" {
			return unwrapSecret(secretArn, *result.SecretString), nil
		}
		logger.Log.Warn("Failed to retrieve secret from Secrets Manager, falling back",
			zap.String("secretArn", secretArn),
			zap.Error(err),
		)
	}

	if fallback != "" {
		logger.Log.Info("Using secret value from environment")
		return fallback, nil
	}
	return "", fmt.Errorf("secret %q not found in Secrets Manager and no fallback set", secretArn)
}

func unwrapSecret(secretArn, raw string) string {
	var secretJSON map[string]string
	if err := json.Unmarshal([]byte(raw), &secretJSON); err != nil {
		logger.Log.Info("Fetched secret from Secrets Manager (plain text)", zap.String("secretArn", secretArn))
		return raw
	}
	if len(secretJSON) == 1 {
		for key, value := range secretJSON {
			logger.Log.Info("Fetched secret from Secrets Manager (single-key JSON)",
				zap.String("secretArn", secretArn),
				zap.String("jsonKey", key),
			)
			return value
		}
	}
	logger.Log.Warn("Secret was JSON but not single-key, returning raw string",
		zap.String("secretArn", secretArn),
		zap.Int("keyCount", len(secretJSON)),
	)
	return raw
}
