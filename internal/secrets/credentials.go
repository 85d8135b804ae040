package secrets

import (
	"encoding/json"

	"github.com/enerscope/enerscope/internal/logger"
)

// Secret entry names. The legacy pair predates the combined entry and is
// migrated on first read.
const (
	glowmarktSecretName         = "glowmarkt_secret"
	legacyGlowmarktUsernameName = "glowmarkt_username"
	legacyGlowmarktPasswordName = "glowmarkt_password"
	n3rgyAPIKeyName             = "n3rgy_api_key"
)

// GlowmarktCredentials is the username/password pair for a Glowmarkt account.
type GlowmarktCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoadGlowmarktCredentials reads the stored Glowmarkt credentials. When only
// the legacy split entries exist they are combined, persisted under the new
// name, and the legacy entries are deleted.
func LoadGlowmarktCredentials(store Store) (*GlowmarktCredentials, bool, error) {
	log := logger.Default().WithPrefix("secrets")

	raw, ok, err := store.Get(glowmarktSecretName)
	if err != nil {
		return nil, false, err
	}
	if ok {
		var creds GlowmarktCredentials
		if err := json.Unmarshal([]byte(raw), &creds); err != nil {
			log.Error("stored glowmarkt secret is unreadable: %v", err)
			return nil, false, err
		}
		return &creds, true, nil
	}

	username, haveUsername, err := store.Get(legacyGlowmarktUsernameName)
	if err != nil {
		return nil, false, err
	}
	password, havePassword, err := store.Get(legacyGlowmarktPasswordName)
	if err != nil {
		return nil, false, err
	}
	if !haveUsername || !havePassword {
		return nil, false, nil
	}

	log.Info("migrating legacy glowmarkt credential entries")
	creds := &GlowmarktCredentials{Username: username, Password: password}
	if err := SaveGlowmarktCredentials(store, creds); err != nil {
		return nil, false, err
	}
	// Legacy entries are removed only after the combined entry is durable.
	if err := store.Delete(legacyGlowmarktUsernameName); err != nil {
		return nil, false, err
	}
	if err := store.Delete(legacyGlowmarktPasswordName); err != nil {
		return nil, false, err
	}
	return creds, true, nil
}

// SaveGlowmarktCredentials persists the combined credential entry.
func SaveGlowmarktCredentials(store Store, creds *GlowmarktCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return store.Set(glowmarktSecretName, string(data))
}

// DeleteGlowmarktCredentials removes every Glowmarkt entry, legacy ones
// included.
func DeleteGlowmarktCredentials(store Store) error {
	if err := store.Delete(glowmarktSecretName); err != nil {
		return err
	}
	if err := store.Delete(legacyGlowmarktUsernameName); err != nil {
		return err
	}
	return store.Delete(legacyGlowmarktPasswordName)
}

// LoadN3rgyAPIKey reads the stored n3rgy API key.
func LoadN3rgyAPIKey(store Store) (string, bool, error) {
	return store.Get(n3rgyAPIKeyName)
}

// SaveN3rgyAPIKey persists the n3rgy API key.
func SaveN3rgyAPIKey(store Store, key string) error {
	return store.Set(n3rgyAPIKeyName, key)
}

// DeleteN3rgyAPIKey removes the n3rgy API key.
func DeleteN3rgyAPIKey(store Store) error {
	return store.Delete(n3rgyAPIKeyName)
}
