package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNotConfigured short-circuits every remote operation when credentials
// are absent. It is never silently swallowed; callers surface it verbatim.
var ErrNotConfigured = errors.New("mirror: remote store not configured")

// ErrRemoteOperation marks a failed remote call during a sync pass. There
// is no automatic retry; re-running the whole sync is the recovery path.
var ErrRemoteOperation = errors.New("mirror: remote operation failed")

// RemoteConfig holds the object-store credentials and target bucket,
// supplied out of band as a JSON file next to the content directory.
type RemoteConfig struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
}

// LoadRemoteConfig reads and validates a RemoteConfig from path. A missing
// file or missing credentials map to ErrNotConfigured so the caller can
// fail fast with a clear message.
func LoadRemoteConfig(path string) (*RemoteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s not found", ErrNotConfigured, path)
		}
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	var cfg RemoteConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing remote config %s: %w", path, err)
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("%w: credentials missing in %s", ErrNotConfigured, path)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket missing in %s", ErrNotConfigured, path)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return &cfg, nil
}
