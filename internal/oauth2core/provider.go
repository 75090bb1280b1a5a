// Package oauth2core implements the OAuth2 Flow Driver (spec §4.D): the
// authorization-code + PKCE flow, the loopback callback listener, and the
// provider descriptor table referenced by both the flow driver and the
// token manager (spec §9, "polymorphism over providers").
package oauth2core

// Provider describes a single OAuth2 identity provider: its three
// endpoints, the scopes a fresh account should request, and whether PKCE
// is expected on the authorization request.
type Provider struct {
	Name             string
	AuthEndpoint     string
	TokenEndpoint    string
	UserinfoEndpoint string
	Scopes           []string
	UsesPKCE         bool
}

// Known provider descriptors. Endpoint values follow each provider's
// published OAuth2 discovery documents.
var (
	Google = Provider{
		Name:             "google",
		AuthEndpoint:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenEndpoint:    "https://oauth2.googleapis.com/token",
		UserinfoEndpoint: "https://www.googleapis.com/oauth2/v2/userinfo",
		Scopes: []string{
			"https://www.googleapis.com/auth/calendar",
			"https://mail.google.com/",
			"openid",
			"email",
		},
		UsesPKCE: true,
	}

	Outlook = Provider{
		Name:             "outlook",
		AuthEndpoint:     "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		TokenEndpoint:    "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		UserinfoEndpoint: "https://graph.microsoft.com/oidc/userinfo",
		Scopes: []string{
			"https://outlook.office.com/IMAP.AccessAsUser.All",
			"https://outlook.office.com/SMTP.Send",
			"offline_access",
			"openid",
			"email",
		},
		UsesPKCE: true,
	}

	Yahoo = Provider{
		Name:             "yahoo",
		AuthEndpoint:     "https://api.login.yahoo.com/oauth2/request_auth",
		TokenEndpoint:    "https://api.login.yahoo.com/oauth2/get_token",
		UserinfoEndpoint: "https://api.login.yahoo.com/openid/v1/userinfo",
		Scopes:           []string{"mail-r", "mail-w", "openid", "email"},
		UsesPKCE:         false,
	}

	ICloud = Provider{
		Name:             "icloud",
		AuthEndpoint:     "https://appleid.apple.com/auth/authorize",
		TokenEndpoint:    "https://appleid.apple.com/auth/token",
		UserinfoEndpoint: "",
		Scopes:           []string{"name", "email"},
		UsesPKCE:         true,
	}
)

var registry = map[string]Provider{
	Google.Name:  Google,
	Outlook.Name: Outlook,
	Yahoo.Name:   Yahoo,
	ICloud.Name:  ICloud,
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (Provider, bool) {
	p, ok := registry[name]
	return p, ok
}

// Register adds or replaces a provider descriptor, letting deployments add
// a self-hosted IMAP/CalDAV provider with OAuth2 without a code change.
func Register(p Provider) {
	registry[p.Name] = p
}
