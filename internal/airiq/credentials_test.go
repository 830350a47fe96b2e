package airiq

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name      string
		creds     Credentials
		wantField string
	}{
		{
			name:  "valid",
			creds: Credentials{AgentID: "AG100", Username: "agent", Password: "secret"},
		},
		{
			name:      "missing agent id",
			creds:     Credentials{Username: "agent", Password: "secret"},
			wantField: "agent_id",
		},
		{
			name:      "missing username",
			creds:     Credentials{AgentID: "AG100", Password: "secret"},
			wantField: "username",
		},
		{
			name:      "missing password",
			creds:     Credentials{AgentID: "AG100", Username: "agent"},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestCredentialsAuthString(t *testing.T) {
	creds := Credentials{AgentID: "AG100", Username: "agent", Password: "secret"}

	assert.Equal(t, "AG100*agent:secret", creds.AuthString())

	expected := base64.StdEncoding.EncodeToString([]byte("AG100*agent:secret"))
	assert.Equal(t, expected, creds.EncodedAuthString())
}
