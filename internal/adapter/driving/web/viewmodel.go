package web

import (
	"strings"
	"time"

	vm "github.com/ericfisherdev/slackpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/slackpanel/internal/domain/model"
)

const connectPath = "/auth/slack"

// toConnectionViewModel converts the stored credential to its view model.
// A nil credential yields the disconnected state.
func toConnectionViewModel(cred *model.Credential) vm.ConnectionViewModel {
	if cred == nil || cred.BotToken == "" {
		return vm.ConnectionViewModel{ConnectURL: connectPath, Scopes: []string{}}
	}

	teamName := cred.TeamName
	if !cred.HasTeam() {
		teamName = "unknown workspace"
	}

	var connectedAt string
	if !cred.ObtainedAt.IsZero() {
		connectedAt = cred.ObtainedAt.UTC().Format(time.RFC1123)
	}

	return vm.ConnectionViewModel{
		Connected:   true,
		TeamName:    teamName,
		TeamID:      cred.TeamID,
		AppID:       cred.AppID,
		Scopes:      splitScopes(cred.Scope),
		ConnectedAt: connectedAt,
		ConnectURL:  connectPath,
	}
}

func splitScopes(scope string) []string {
	scopes := []string{}
	for _, s := range strings.Split(scope, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}
