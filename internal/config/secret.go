// internal/config/secret.go
//
// SECRET_KEY fallback and `vault:` reference resolution.
//
// Context
// -------
// Operators may put SECRET_KEY in the environment, in `.env`, in the
// `django` block of the config file, or in Vault.  A Vault reference has
// the form
//
//	vault:<mount>/<path>#<key>        e.g. vault:secret/promgen#secret_key
//
// and is resolved through the SecretResolver handed to Assemble.  When no
// layer yields a key at all, a random one is generated so the process can
// still start.  Sessions signed with it do not survive a restart, which is
// why the fallback is logged and counted.

package config

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
)

const (
	secretKeyLength   = 50
	secretKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*(-_=+)"

	vaultPrefix   = "vault:"
	vaultCacheTTL = 5 * time.Minute
)

// vaultKeys are the only settings allowed to hold a Vault reference.
var vaultKeys = []string{"SECRET_KEY", "DATABASE_URL"}

// SecretResolver fetches one key of a KV-v2 secret.  *vault.Client
// satisfies it.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// randomSecretKey returns secretKeyLength characters drawn uniformly from
// secretKeyAlphabet.
func randomSecretKey() (string, error) {
	max := big.NewInt(int64(len(secretKeyAlphabet)))
	var b strings.Builder
	b.Grow(secretKeyLength)
	for i := 0; i < secretKeyLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("secret key fallback: %w", err)
		}
		b.WriteByte(secretKeyAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// parseVaultRef splits "vault:secret/promgen#secret_key".
func parseVaultRef(s string) (path, key string, ok bool) {
	if !strings.HasPrefix(s, vaultPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(s, vaultPrefix)
	i := strings.LastIndexByte(rest, '#')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// resolveVaultRefs replaces every vault: value in vaultKeys with the secret
// it points at.
func resolveVaultRefs(ctx context.Context, k *koanf.Koanf, r SecretResolver) error {
	for _, name := range vaultKeys {
		raw := k.String(name)
		if !strings.HasPrefix(raw, vaultPrefix) {
			continue
		}
		path, key, ok := parseVaultRef(raw)
		if !ok {
			return fmt.Errorf("%w: %s: bad vault reference %q", ErrInvalidValue, name, raw)
		}
		if r == nil {
			return fmt.Errorf("%w: %s: vault reference with no vault client", ErrMissingValue, name)
		}
		val, err := r.GetKV(ctx, path, key, vaultCacheTTL)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMissingValue, name, err)
		}
		if err := setSetting(k, name, val); err != nil {
			return err
		}
	}
	return nil
}

// isSecretName reports whether a setting holds a credential.
func isSecretName(name string) bool {
	n := strings.ToUpper(name)
	return strings.Contains(n, "SECRET") ||
		strings.Contains(n, "PASSWORD") ||
		strings.Contains(n, "TOKEN") ||
		n == "SENTRY_DSN"
}
