package model

import "time"

// Credential is the bot credential obtained from a Slack OAuth exchange.
// Exactly one credential is active at a time; a new authorization replaces it.
type Credential struct {
	BotToken   string
	Scope      string // comma-separated OAuth scopes, as returned by Slack
	TeamID     string
	TeamName   string // empty when Slack did not report a team
	AppID      string
	ObtainedAt time.Time
}

// HasTeam reports whether the credential carries a workspace name.
func (c Credential) HasTeam() bool {
	return c.TeamName != ""
}
