// Package credentials holds a Slack bot token and hands out API clients for it.
//
// Load stored credentials and get a client:
//
//	creds := credentials.New(os.Getenv("SLACK_TOKEN"))
//	api := creds.GetClient()
//	_, _, err := api.PostMessageContext(ctx, "#general", slack.MsgOptionText("hello", false))
package credentials

import (
	"github.com/clambin/slack-blocks/pkg/secret"
	"github.com/slack-go/slack"
)

// Credentials holds the bot user OAuth token of the Slack app used to perform actions.
type Credentials struct {
	Token secret.Secret `json:"token" yaml:"token"`
}

// New returns Credentials for the given bot token.
func New(token string) Credentials {
	return Credentials{Token: secret.New(token)}
}

// GetClient returns a Slack API client authenticated with the stored token.
// No request is made: an invalid token only shows up once the client is used.
func (c Credentials) GetClient(options ...slack.Option) *slack.Client {
	return slack.New(c.Token.Value(), options...)
}
