// Package oauth implements the client side of the accounts service grant
// flows and the helpers they depend on.
//
// # Core Components
//
//   - Flow: sealed interface over the four grant variants
//   - AuthorizationCodeFlow: confidential client, secret via HTTP Basic or body
//   - PKCEFlow: public client, code_verifier sent at exchange (RFC 7636)
//   - ClientCredentialsFlow: app-only token, no refresh
//   - ImplicitFlow: token delivered in the redirect fragment
//   - PKCE and state helpers built on a platform.Provider
//   - GrantError and CallbackError with kind sentinels for errors.Is
//
// Token endpoint calls are made through golang.org/x/oauth2. Server error and
// error_description values are preserved on GrantError.
//
// # Usage
//
//	p := platform.Default()
//	flow, err := oauth.NewPKCEFlow(oauth.Credentials{
//		ClientID:    clientID,
//		RedirectURI: "http://127.0.0.1:8888/callback",
//	})
//
//	pair, err := oauth.GeneratePKCE(p)
//	state, err := oauth.GenerateState(p)
//	authURL, err := flow.BuildAuthorizationURL(oauth.AuthorizationRequest{
//		Scopes: oauth.Scopes{"user-read-private"},
//		State:  state,
//	}.WithPKCE(pair))
//
//	// after the redirect
//	cb, err := oauth.ParseCodeCallback(query, state)
//	tok, err := flow.Exchange(ctx, cb.Code, "", pair.CodeVerifier)
//
// This package does not persist tokens. Callers own storage.
package oauth
