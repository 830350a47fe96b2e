package airiq

import (
	"encoding/base64"
	"fmt"
)

// Credentials holds the AirIQ agency login material. The values are only
// ever sent inside the Authorization header of POST /Login; they must never
// appear in logs or HTTP responses.
type Credentials struct {
	AgentID  string
	Username string
	Password string
}

// Validate checks that all three fields are present.
func (c Credentials) Validate() error {
	if c.AgentID == "" {
		return &ConfigError{Field: "agent_id", Message: "is required"}
	}
	if c.Username == "" {
		return &ConfigError{Field: "username", Message: "is required"}
	}
	if c.Password == "" {
		return &ConfigError{Field: "password", Message: "is required"}
	}
	return nil
}

// AuthString builds the provider's composite credential string. The layout
// is fixed by the AirIQ API: "{agent_id}*{username}:{password}".
func (c Credentials) AuthString() string {
	return fmt.Sprintf("%s*%s:%s", c.AgentID, c.Username, c.Password)
}

// EncodedAuthString returns the base64 form sent in the login
// Authorization header.
func (c Credentials) EncodedAuthString() string {
	return base64.StdEncoding.EncodeToString([]byte(c.AuthString()))
}
