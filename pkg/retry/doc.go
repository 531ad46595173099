// Package retry provides backoff and retry logic for transient render
// surface failures.
//
//	cfg := retry.FromConfig(appCfg.Retry, log)
//	err := retry.Do(ctx, func(ctx context.Context) error {
//		return surf.Navigate(ctx, searchURL)
//	}, cfg)
//
//	height, err := retry.DoWithResult(ctx, surf.ContentHeight, cfg)
//
// Errors typed by feedharvest/pkg/errors are retried only when their type is
// retryable; context cancellation is never retried.
package retry
