package config

import "context"

// SecretProvider resolves secret pointers (SSM parameter paths in deployed
// environments) to plaintext values.
type SecretProvider interface {
	// GetParametersBatch resolves every key it can and returns key -> value.
	// Keys that do not exist are omitted from the result rather than failing
	// the whole batch.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
