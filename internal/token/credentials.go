package token

import (
	"fmt"
	"os"
	"strings"
)

// ProviderCredentials holds the OAuth2 client credentials a refresh needs.
// Account config stores do not persist client secrets (spec §4.B only
// covers per-account, non-secret fields); they are supplied out of band,
// by environment variable, per provider.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

// credentialsFromEnv looks up COMUNICADO_<PROVIDER>_CLIENT_ID and
// COMUNICADO_<PROVIDER>_CLIENT_SECRET, following the teacher's
// GOOG_CLIENT_ID/GOOG_CLIENT_SECRET convention generalized across
// providers.
func credentialsFromEnv(provider string) (ProviderCredentials, error) {
	prefix := "COMUNICADO_" + strings.ToUpper(provider)
	clientID := os.Getenv(prefix + "_CLIENT_ID")
	if clientID == "" {
		return ProviderCredentials{}, fmt.Errorf("%w: set %s_CLIENT_ID", ErrMissingClientID, prefix)
	}
	clientSecret := os.Getenv(prefix + "_CLIENT_SECRET")
	return ProviderCredentials{ClientID: clientID, ClientSecret: clientSecret}, nil
}
