// Package auth holds the credential state of one client and coordinates
// its refreshes.
//
// A Provider moves between four statuses:
//
//	Unauthenticated --SetToken--> Authenticated --Refresh--> Refreshing
//	Refreshing --success--> Authenticated
//	Refreshing --failure--> Failed (previous access token kept)
//	Failed --Refresh--> Refreshing
//	any --Clear--> Unauthenticated
//
// CurrentToken is lock-free and never waits for a refresh. Refresh is
// single-flight: concurrent callers share one call of the RefreshFunc and
// all observe its result. A caller that gives up early does not cancel the
// refresh for the others.
//
// # Usage
//
//	flow, _ := oauth.NewPKCEFlow(creds)
//	p, _ := auth.NewFlowProvider(flow,
//	    auth.WithInitialToken(tok),
//	    auth.WithOnRefreshSuccess(store.Save),
//	)
//	token, ok := p.CurrentToken()
//
// Provider satisfies the token source expected by pkg/httpclient.
package auth
