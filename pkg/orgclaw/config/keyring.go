package config

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

// keyringService is the service name in the OS keyring.
const keyringService = "orgclaw"

// providerKeyName maps a provider name to its keyring entry.
func providerKeyName(provider string) string {
	return "provider_" + provider
}

// StoreProviderKey saves a provider API key to the OS keyring.
func StoreProviderKey(provider, key string) error {
	return keyring.Set(keyringService, providerKeyName(provider), key)
}

// GetProviderKey retrieves a provider API key from the OS keyring. Returns
// empty string when absent.
func GetProviderKey(provider string) string {
	val, err := keyring.Get(keyringService, providerKeyName(provider))
	if err != nil {
		return ""
	}
	return val
}

// DeleteProviderKey removes a provider API key from the OS keyring.
func DeleteProviderKey(provider string) error {
	return keyring.Delete(keyringService, providerKeyName(provider))
}

// KeyringAvailable probes the OS keyring with a write+delete cycle.
func KeyringAvailable() bool {
	const testKey = "__orgclaw_test__"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, testKey)
	return true
}

// Secrets resolves provider keys: OS keyring first, then the encrypted vault
// when one is unlocked. It satisfies llm.KeySource; the environment takes
// precedence upstream of this chain.
type Secrets struct {
	vault *Vault // nil or locked is fine
}

// NewSecrets creates the resolver. vault may be nil.
func NewSecrets(vault *Vault) *Secrets {
	return &Secrets{vault: vault}
}

// ProviderKey resolves the API key for a named provider.
func (s *Secrets) ProviderKey(name string) (string, error) {
	if key := GetProviderKey(name); key != "" {
		return key, nil
	}
	if s.vault != nil && s.vault.IsUnlocked() {
		key, err := s.vault.Get(providerKeyName(name))
		if err != nil {
			return "", fmt.Errorf("vault lookup for %s: %w", name, err)
		}
		return key, nil
	}
	return "", nil
}
