package api

import (
	"encoding/json"
	"net/http"

	"github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/provider"
	"github.com/enerscope/enerscope/internal/secrets"
)

type credentialStatusResponse struct {
	Glowmarkt bool `json:"glowmarkt"`
	N3rgy     bool `json:"n3rgy"`
}

// handleCredentialStatus reports which providers have stored credentials.
// Secret values never leave the store.
func (s *Server) handleCredentialStatus(w http.ResponseWriter, r *http.Request) {
	_, haveGlowmarkt, err := secrets.LoadGlowmarktCredentials(s.Secrets)
	if err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}
	_, haveN3rgy, err := secrets.LoadN3rgyAPIKey(s.Secrets)
	if err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}
	respondJSON(w, http.StatusOK, credentialStatusResponse{
		Glowmarkt: haveGlowmarkt,
		N3rgy:     haveN3rgy,
	})
}

type saveCredentialsRequest struct {
	Provider string `json:"provider"`
	Username string `json:"username"`
	Password string `json:"password"`
	APIKey   string `json:"api_key"`
}

// handleSaveCredentials stores credentials, rebuilds the provider against
// them, and queues a sync pass when the rebuild succeeds.
func (s *Server) handleSaveCredentials(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var body saveCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	switch body.Provider {
	case "glowmarkt":
		if body.Username == "" || body.Password == "" {
			handleError(w, r, errors.NewValidationError("credentials", "username and password required"))
			return
		}
		creds := &secrets.GlowmarktCredentials{Username: body.Username, Password: body.Password}
		if err := secrets.SaveGlowmarktCredentials(s.Secrets, creds); err != nil {
			handleError(w, r, errors.NewInternalError(err))
			return
		}
	case "n3rgy":
		if body.APIKey == "" {
			handleError(w, r, errors.NewValidationError("credentials", "api_key required"))
			return
		}
		if err := secrets.SaveN3rgyAPIKey(s.Secrets, body.APIKey); err != nil {
			handleError(w, r, errors.NewInternalError(err))
			return
		}
	default:
		handleError(w, r, errors.NewValidationError("provider", "must be glowmarkt or n3rgy"))
		return
	}

	prov, err := s.BuildProvider(r.Context())
	if err != nil {
		log.Warn("provider rebuild failed with new credentials: %v", err)
		handleError(w, r, errors.NewConfigurationError("stored credentials were rejected by the provider"))
		return
	}

	s.Orchestrator.SetProvider(prov)
	s.spawnSync()
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

type connectionTestResponse struct {
	Active bool `json:"active"`
}

// handleTestCredentials builds a provider from the stored credentials and
// probes the vendor API with it. active=false means no credentials are
// stored; a rejected key or an unreachable API is reported as an error.
func (s *Server) handleTestCredentials(w http.ResponseWriter, r *http.Request) {
	prov, err := s.BuildProvider(r.Context())
	if err != nil {
		handleError(w, r, errors.NewConfigurationError("stored credentials were rejected by the provider"))
		return
	}
	if prov == nil {
		respondJSON(w, http.StatusOK, connectionTestResponse{Active: false})
		return
	}

	if err := prov.TestConnection(r.Context()); err != nil {
		if provider.IsTerminal(err) {
			handleError(w, r, errors.NewConfigurationError("provider rejected the connection test"))
		} else {
			handleError(w, r, errors.NewProviderError(prov.Name(), err))
		}
		return
	}

	respondJSON(w, http.StatusOK, connectionTestResponse{Active: true})
}

// handleReset clears stored data; with ?full=true it also wipes credentials
// and detaches the provider.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	full := r.URL.Query().Get("full") == "true"

	if full {
		if err := s.Reset.FullReset(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
		s.Orchestrator.SetProvider(nil)
	} else {
		if err := s.Reset.ClearData(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
