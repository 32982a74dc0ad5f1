// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// ConnectionViewModel holds presentation-ready data about the authorized
// Slack workspace for the status and callback pages.
type ConnectionViewModel struct {
	Connected   bool
	TeamName    string // "unknown workspace" when Slack reported none
	TeamID      string
	AppID       string
	Scopes      []string
	ConnectedAt string // formatted ObtainedAt, empty when unknown
	ConnectURL  string // GET target that starts the OAuth flow
}
