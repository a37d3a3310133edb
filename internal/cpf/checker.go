package cpf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// ErrValidatorUnavailable is returned when the remote validator cannot answer.
var ErrValidatorUnavailable = errors.New("cpf validator unavailable")

// Checker decides whether a CPF is valid.
type Checker interface {
	Check(ctx context.Context, cpf string) (bool, error)
}

// FormatChecker only runs the local format pre-check.
type FormatChecker struct{}

// Check implements Checker.
func (FormatChecker) Check(_ context.Context, cpf string) (bool, error) {
	return LooksValid(cpf), nil
}

// RemoteConfig configures a RemoteChecker.
type RemoteConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

type validateRequest struct {
	CPF string `json:"cpf"`
}

type validateResponse struct {
	IsValid bool `json:"isValid"`
}

// RemoteChecker asks a prompt-based validation service about CPFs that pass
// the local format pre-check.
type RemoteChecker struct {
	client   *resty.Client
	endpoint string
	logger   *zap.Logger
}

// NewRemoteChecker creates a RemoteChecker posting to cfg.Endpoint.
func NewRemoteChecker(cfg RemoteConfig, logger *zap.Logger) *RemoteChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &RemoteChecker{
		client:   client,
		endpoint: cfg.Endpoint,
		logger:   logger,
	}
}

// Check implements Checker. Input failing the pre-check is rejected without a
// remote call.
func (r *RemoteChecker) Check(ctx context.Context, cpf string) (bool, error) {
	if !LooksValid(cpf) {
		return false, nil
	}

	var out validateResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(validateRequest{CPF: cpf}).
		SetResult(&out).
		Post(r.endpoint)
	if err != nil {
		r.logger.Error("cpf validation request failed", zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrValidatorUnavailable, err)
	}
	if resp.IsError() {
		r.logger.Warn("cpf validator returned an error status", zap.Int("status", resp.StatusCode()))
		return false, fmt.Errorf("%w: status %d", ErrValidatorUnavailable, resp.StatusCode())
	}

	return out.IsValid, nil
}

// Close releases the underlying HTTP client.
func (r *RemoteChecker) Close() error {
	return r.client.Close()
}
