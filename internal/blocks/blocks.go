package blocks

import (
	"errors"
	"fmt"
	"github.com/clambin/slack-blocks/pkg/credentials"
	"github.com/clambin/slack-blocks/pkg/secret"
	"github.com/clambin/slack-blocks/pkg/webhook"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"slices"
	"strings"
)

var (
	ErrNotFound     = errors.New("block not found")
	ErrInvalidBlock = errors.New("invalid block")
)

// Registry holds named Slack credentials and webhooks.
type Registry struct {
	credentials map[string]credentials.Credentials
	webhooks    map[string]secret.Secret
}

type document struct {
	Credentials map[string]struct {
		Token string `yaml:"token"`
	} `yaml:"credentials"`
	Webhooks map[string]struct {
		URL string `yaml:"url"`
	} `yaml:"webhooks"`
}

// Load reads a blocks file:
//
//	credentials:
//	  bot:
//	    token: ${SLACK_BOT_TOKEN}
//	webhooks:
//	  alerts:
//	    url: https://hooks.slack.com/services/XXX
//
// Environment variables in secrets are expanded.
func Load(r io.Reader) (*Registry, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	reg := New()
	for name, c := range doc.Credentials {
		if err := reg.AddCredentials(name, os.ExpandEnv(c.Token)); err != nil {
			return nil, err
		}
	}
	for name, w := range doc.Webhooks {
		if err := reg.AddWebhook(name, os.ExpandEnv(w.URL)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFile loads the blocks file at path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

func New() *Registry {
	return &Registry{
		credentials: make(map[string]credentials.Credentials),
		webhooks:    make(map[string]secret.Secret),
	}
}

// AddCredentials registers a bot token under name.
func (r *Registry) AddCredentials(name, token string) error {
	if err := validate("credentials", name, "token", token); err != nil {
		return err
	}
	r.credentials[name] = credentials.New(token)
	return nil
}

// AddWebhook registers a webhook URL under name. The URL's shape is not checked.
func (r *Registry) AddWebhook(name, url string) error {
	if err := validate("webhook", name, "url", url); err != nil {
		return err
	}
	r.webhooks[name] = secret.New(url)
	return nil
}

func validate(kind, name, field, value string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s: missing name: %w", kind, ErrInvalidBlock)
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s %q: missing %s: %w", kind, name, field, ErrInvalidBlock)
	}
	return nil
}

// Credentials returns the credentials registered under name.
func (r *Registry) Credentials(name string) (credentials.Credentials, error) {
	c, ok := r.credentials[name]
	if !ok {
		return credentials.Credentials{}, fmt.Errorf("credentials %q: %w", name, ErrNotFound)
	}
	return c, nil
}

// Webhook returns a new Webhook for the URL registered under name.
func (r *Registry) Webhook(name string, options ...webhook.Option) (*webhook.Webhook, error) {
	url, ok := r.webhooks[name]
	if !ok {
		return nil, fmt.Errorf("webhook %q: %w", name, ErrNotFound)
	}
	return webhook.New(url.Value(), options...), nil
}

// CredentialNames returns the names of all registered credentials, sorted.
func (r *Registry) CredentialNames() []string {
	return sortedKeys(r.credentials)
}

// WebhookNames returns the names of all registered webhooks, sorted.
func (r *Registry) WebhookNames() []string {
	return sortedKeys(r.webhooks)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
