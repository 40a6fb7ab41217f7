// Package httpclient sends Web API requests authenticated with the token
// held by a TokenSource.
//
// Transport adds "Authorization: Bearer <token>" to each request. Without
// a token it fails with an AuthError of kind AuthNoToken and sends
// nothing. A 401 response triggers one refresh and one retry; a second 401
// becomes AuthStillUnauthorized and a failed refresh becomes
// AuthRefreshFailed wrapping the refresh error.
//
// Example:
//
//	p, _ := auth.NewFlowProvider(flow, auth.WithInitialToken(tok))
//	c, _ := httpclient.New(p)
//	var me struct{ ID string `json:"id"` }
//	err := c.GetJSON(ctx, "/me", &me)
//	if errors.Is(err, httpclient.ErrRefreshFailed) {
//	    // log in again
//	}
package httpclient
