// Package config loads the spotauth configuration.
//
// Configuration is read from config.yaml in a single directory, by default
// ~/.config/spotauth, over built-in defaults. The variables
// SPOTAUTH_CLIENT_ID, SPOTAUTH_CLIENT_SECRET, SPOTAUTH_REDIRECT_URI and
// SPOTAUTH_FLOW override the file.
//
// Example config.yaml:
//
//	client_id: 0123456789abcdef
//	flow: pkce
//	redirect_uri: http://127.0.0.1:8888/callback
//	scopes:
//	  - user-read-private
//	  - playlist-read-private
//	http_timeout: 15s
package config
