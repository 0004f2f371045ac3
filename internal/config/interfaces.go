package config

import "context"

// SecretProvider resolves secret references to plaintext values. SSMProvider
// serves deployed environments and EnvVarProvider serves local runs.
type SecretProvider interface {
	// GetParametersBatch returns a map of key -> value for every key it could
	// resolve. Missing keys are omitted rather than reported as errors.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
