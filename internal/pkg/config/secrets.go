// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// TokenSource yields the bearer credential for outbound ERP and detection
// calls. It matches the ports.TokenProvider contract so implementations
// here can be handed straight to the HTTP adapters.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// NewERPTokenSource picks the token source from configuration: Secrets
// Manager when a secret name is set, the static env token otherwise.
func NewERPTokenSource(cfg *Config, logger *slog.Logger) (TokenSource, error) {
	if cfg.ERP.TokenSecretName != "" {
		sm, err := NewAWSSecretsManager(cfg.AWS.Region, cfg.ERP.TokenSecretName, logger)
		if err != nil {
			return nil, fmt.Errorf("init secrets manager: %w", err)
		}
		return &secretTokenSource{secrets: sm, key: cfg.ERP.TokenSecretKey}, nil
	}
	return StaticTokenSource(cfg.ERP.Token), nil
}

// StaticTokenSource returns a fixed token on every call.
type StaticTokenSource string

func (s StaticTokenSource) Token(_ context.Context) (string, error) {
	return string(s), nil
}

// secretTokenSource reads the token out of an AWS Secrets Manager secret.
type secretTokenSource struct {
	secrets *AWSSecretsManager
	key     string
}

func (s *secretTokenSource) Token(ctx context.Context) (string, error) {
	return s.secrets.GetSecret(ctx, s.key)
}

// AWSSecretsManager fetches and caches a JSON secret from AWS Secrets
// Manager. The cache keeps token lookups off the hot path of every
// submission.
type AWSSecretsManager struct {
	client     *secretsmanager.Client
	secretName string
	cache      map[string]string
	cacheMu    sync.RWMutex
	lastFetch  time.Time
	ttl        time.Duration
	logger     *slog.Logger
}

// NewAWSSecretsManager creates a new AWS Secrets Manager client
func NewAWSSecretsManager(region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	ctx := context.Background()

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSecretsManager{
		client:     secretsmanager.NewFromConfig(cfg),
		secretName: secretName,
		cache:      make(map[string]string),
		ttl:        5 * time.Minute,
		logger:     logger,
	}, nil
}

// GetSecret retrieves a single key from the secret payload
func (sm *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	sm.cacheMu.RLock()
	if time.Since(sm.lastFetch) < sm.ttl {
		if val, ok := sm.cache[key]; ok {
			sm.cacheMu.RUnlock()
			return val, nil
		}
	}
	sm.cacheMu.RUnlock()

	data, err := sm.fetch(ctx)
	if err != nil {
		return "", err
	}

	val, ok := data[key]
	if !ok {
		return "", fmt.Errorf("secret key %s not found in %s", key, sm.secretName)
	}
	return val, nil
}

// RefreshSecrets drops the cache so the next lookup hits AWS again
func (sm *AWSSecretsManager) RefreshSecrets(ctx context.Context) error {
	sm.cacheMu.Lock()
	sm.cache = make(map[string]string)
	sm.lastFetch = time.Time{}
	sm.cacheMu.Unlock()

	_, err := sm.fetch(ctx)
	return err
}

func (sm *AWSSecretsManager) fetch(ctx context.Context) (map[string]string, error) {
	sm.logger.Info("fetching secrets from AWS Secrets Manager",
		slog.String("secret_name", sm.secretName))

	input := &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	}

	result, err := sm.client.GetSecretValue(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}

	var secretData map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &secretData); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	sm.cacheMu.Lock()
	sm.cache = secretData
	sm.lastFetch = time.Now()
	sm.cacheMu.Unlock()

	return secretData, nil
}
