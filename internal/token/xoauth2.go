package token

import (
	"context"
	"encoding/base64"
)

// XOAUTH2 constructs the SASL XOAUTH2 initial response for accountID,
// requiring a valid (possibly freshly refreshed) access token. The wire
// layout is exact: "user=" username 0x01 "auth=Bearer " token 0x01 0x01.
func (m *Manager) XOAUTH2(ctx context.Context, accountID, username string) (string, error) {
	access, err := m.GetValidAccess(ctx, accountID)
	if err != nil {
		return "", err
	}
	return EncodeXOAUTH2(username, access), nil
}

// EncodeXOAUTH2 base64-encodes the raw XOAUTH2 SASL string for username
// and accessToken, independent of any Manager state.
func EncodeXOAUTH2(username, accessToken string) string {
	raw := "user=" + username + "\x01" + "auth=Bearer " + accessToken + "\x01\x01"
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
