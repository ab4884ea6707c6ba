package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
	"github.com/sethvargo/go-retry"
)

const healthPollInterval = 2 * time.Second

// WaitReady polls the backend health endpoint until it answers 2xx or
// conf.HealthTimeout elapses. Local servers answer 503 while loading weights.
func WaitReady(ctx context.Context, logger *slog.Logger, conf *config.ModelConfig) error {
	return waitReady(ctx, logger, conf.GetHealthURL(), conf.HealthTimeout, healthPollInterval)
}

func waitReady(ctx context.Context, logger *slog.Logger, url string, timeout, interval time.Duration) error {
	client := resty.New().SetTimeout(interval * 2)
	backoff := retry.WithMaxDuration(timeout, retry.NewConstant(interval))

	started := time.Now()
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, err := client.R().SetContext(ctx).Get(url)
		if err != nil {
			logger.Debug("backend not reachable yet", "url", url, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		if resp.IsError() {
			logger.Debug("backend not ready yet", "url", url, "attempt", attempt, "status", resp.StatusCode())
			return retry.RetryableError(errors.Errorf("health check returned %s", resp.Status()))
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return errors.WithStack(ctx.Err())
		}
		return &Error{Class: ClassUnavailable, Err: errors.Wrapf(err, "backend at %s not ready after %s", url, timeout)}
	}

	logger.Info("backend ready", "url", url, "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}
