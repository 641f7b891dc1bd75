package domain

// Domain contains core models shared by the vault client, cache and CLI.

// Secret is the decoded envelope of a secrets API response.
type Secret struct {
	Path          string         `json:"path"`
	RequestID     string         `json:"request_id,omitempty"`
	LeaseID       string         `json:"lease_id,omitempty"`
	LeaseDuration int            `json:"lease_duration,omitempty"`
	Renewable     bool           `json:"renewable,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// StringValue returns Data[key] when it is a string.
func (s *Secret) StringValue(key string) (string, bool) {
	if s == nil || s.Data == nil {
		return "", false
	}
	v, ok := s.Data[key].(string)
	return v, ok
}
