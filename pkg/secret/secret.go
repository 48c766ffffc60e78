// Package secret provides a string wrapper that keeps its value out of logs and serialized output.
//
// The raw value is only available through Value:
//
//	s := secret.New("xoxb-1234")
//	fmt.Println(s)   // **********
//	api := slack.New(s.Value())
package secret

import (
	"encoding/json"
	"log/slog"
)

const mask = "**********"

// Secret holds a sensitive string. The zero value is an empty secret.
type Secret struct {
	value string
}

// New wraps value in a Secret.
func New(value string) Secret {
	return Secret{value: value}
}

// Value returns the wrapped value.
func (s Secret) Value() string {
	return s.value
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

func (s Secret) String() string {
	if s.IsZero() {
		return ""
	}
	return mask
}

func (s Secret) GoString() string {
	return "secret.Secret{" + s.String() + "}"
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText stores text as the secret's value.
func (s *Secret) UnmarshalText(text []byte) error {
	s.value = string(text)
	return nil
}

// UnmarshalJSON reads a JSON string into the secret.
func (s *Secret) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.value)
}

var (
	_ slog.LogValuer   = Secret{}
	_ json.Marshaler   = Secret{}
	_ json.Unmarshaler = &Secret{}
)
