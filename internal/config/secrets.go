// internal/config/secrets.go
//
// `vault:` reference resolution.
//
// A string value of the form
//
//	vault:<mount>/<path>#<key>
//
// is replaced with the named key of a KV-v2 secret before unmarshal.  The
// resolver is *vault.Client in production and a map in tests.

package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
)

const vaultPrefix = "vault:"

// secretTTL caches resolved secrets inside the vault client for reloads.
const secretTTL = 5 * time.Minute

// SecretResolver fetches one key of a secret.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// ParseRef splits "vault:secret/app#token" into ("secret/app", "token").
func ParseRef(v string) (path, key string, ok bool) {
	if !strings.HasPrefix(v, vaultPrefix) {
		return "", "", false
	}
	path, key, found := strings.Cut(strings.TrimPrefix(v, vaultPrefix), "#")
	if !found || path == "" || key == "" {
		return "", "", false
	}
	return path, key, true
}

func resolveSecrets(ctx context.Context, k *koanf.Koanf, secrets SecretResolver) error {
	for _, name := range k.Keys() {
		s, ok := k.Get(name).(string)
		if !ok || !strings.HasPrefix(s, vaultPrefix) {
			continue
		}
		path, key, ok := ParseRef(s)
		if !ok {
			return fmt.Errorf("config %s: malformed vault reference %q", name, s)
		}
		if secrets == nil {
			return fmt.Errorf("config %s: vault reference but no vault client", name)
		}
		val, err := secrets.GetKV(ctx, path, key, secretTTL)
		if err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
		if err := k.Set(name, val); err != nil {
			return err
		}
	}
	return nil
}

// NeedsSecrets reports whether any env override carries a vault: reference.
// cmd/web uses it to skip the Vault client on plain deployments.
func NeedsSecrets(environ []string) bool {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		if _, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(v, vaultPrefix) {
			return true
		}
	}
	return false
}
