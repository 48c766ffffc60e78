package webhook

// NotificationError is returned by RaiseOnFailure when Slack rejected a message.
// Body holds Slack's response, e.g. "invalid_payload" or "no_text".
type NotificationError struct {
	StatusCode int
	Body       string
}

func (e *NotificationError) Error() string {
	return "failed to send message: " + e.Body
}
