package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	ordinalKey contextKey = "ordinal"
	productKey contextKey = "product"
)

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithOrdinal annotates context with the 1-based job ordinal. Zero means the
// job runs on the sequential path and carries no ordinal.
func WithOrdinal(ctx context.Context, n int) context.Context {
	if n <= 0 {
		return ctx
	}
	return context.WithValue(ctx, ordinalKey, n)
}

// OrdinalFromContext returns the job ordinal if present.
func OrdinalFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(ordinalKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// WithProduct annotates context with the product path a job is processing.
func WithProduct(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, productKey, path)
}

// ProductFromContext returns the product path if present.
func ProductFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(productKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
