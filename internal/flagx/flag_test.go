package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "http://localhost:5000/api"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-config=alt.json", "-s", "medbook.db"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "-y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-s", "x.db"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "several allowed flags keep order",
			args:         []string{"-a", "http://h/api", "-t", "5", "-other", "x"},
			allowedFlags: []string{"-t", "-a"},
			want:         []string{"-a", "http://h/api", "-t", "5"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, "/p/short.json", ConfigFile([]string{"-c", "/p/short.json"}))
	assert.Equal(t, "/p/long.json", ConfigFile([]string{"-config", "/p/long.json"}))
	assert.Equal(t, "/p/2.json", ConfigFile([]string{"-c", "/p/1.json", "-config=/p/2.json"}))
	assert.Empty(t, ConfigFile([]string{"-a", "http://x", "-l", "debug"}))
}

func TestEnvFile(t *testing.T) {
	assert.Equal(t, ".env.local", EnvFile([]string{"-s", "x.db", "-env", ".env.local"}))
	assert.Empty(t, EnvFile(nil))
}
