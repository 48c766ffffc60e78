package blocks

import "github.com/clambin/slack-blocks/pkg/secret"

type Encoder interface {
	Encode(any) error
}

type entry struct {
	Name   string
	Secret secret.Secret
}

type report struct {
	Credentials []entry
	Webhooks    []entry
}

// Show writes the registered blocks to e. Secrets are masked.
func Show(r *Registry, e Encoder) error {
	var rep report
	for _, name := range r.CredentialNames() {
		rep.Credentials = append(rep.Credentials, entry{Name: name, Secret: r.credentials[name].Token})
	}
	for _, name := range r.WebhookNames() {
		rep.Webhooks = append(rep.Webhooks, entry{Name: name, Secret: r.webhooks[name]})
	}
	return e.Encode(rep)
}
