// Package smtp implements the SMTP session's XOAUTH2 AUTH negotiation
// (spec §1, §4.C: "SASL XOAUTH2 assembly for IMAP/SMTP"). Full mail
// transport — MIME assembly, delivery, pooling — is out of scope; this
// package only authenticates a net/smtp session against a server that
// advertises the XOAUTH2 mechanism.
//
// No third-party SMTP or SASL client appears anywhere in the example
// pack, so this is built directly on net/smtp's extensible Auth
// interface rather than a hand-rolled protocol client.
package smtp

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/olafkfreund/comunicado-sub004/internal/token"
)

// ErrServerChallenge is returned when the server responds to the
// XOAUTH2 initial response with a continuation challenge, which signals
// an authentication failure.
var ErrServerChallenge = errors.New("smtp: server rejected XOAUTH2 credentials")

// xoauth2Auth implements smtp.Auth for the XOAUTH2 mechanism. Start builds
// the raw SASL initial response (the same layout token.EncodeXOAUTH2
// encodes); net/smtp base64-encodes it on the wire.
type xoauth2Auth struct {
	username string
	token    string
}

// XOAUTH2Auth builds an smtp.Auth that authenticates username using
// accessToken via SASL XOAUTH2.
func XOAUTH2Auth(username, accessToken string) smtp.Auth {
	return &xoauth2Auth{username: username, token: accessToken}
}

func (a *xoauth2Auth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, fmt.Errorf("smtp: refusing XOAUTH2 over a non-TLS connection")
	}
	raw := "user=" + a.username + "\x01" + "auth=Bearer " + a.token + "\x01\x01"
	return "XOAUTH2", []byte(raw), nil
}

func (a *xoauth2Auth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	// The server sent a continuation challenge, meaning it rejected the
	// initial response. No empty response is sent; returning an error
	// makes net/smtp cancel the exchange.
	return nil, ErrServerChallenge
}

// ManagerAuth builds an smtp.Auth for accountID, fetching a valid access
// token from mgr at dial time rather than embedding a token that may be
// stale by the time the SMTP session authenticates.
func ManagerAuth(ctx context.Context, mgr *token.Manager, accountID, username string) (smtp.Auth, error) {
	access, err := mgr.GetValidAccess(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("smtp: resolve access token for %s: %w", accountID, err)
	}
	return XOAUTH2Auth(username, access), nil
}
