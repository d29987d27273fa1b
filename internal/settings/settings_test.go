package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// decodeBody decodes a YAML document holding only the namespace body.
func decodeBody(t *testing.T, data string) (*Settings, error) {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(data), &doc))
	if len(doc.Content) == 0 {
		return Decode(nil)
	}
	return Decode(doc.Content[0])
}

func TestValidate_MissingNamespace(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No custom settings found")
	assert.Contains(t, err.Error(), "custom:")

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, Namespace, cfgErr.Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  string
	}{
		{
			name:     "empty settings are tolerated",
			settings: Settings{},
		},
		{
			name:     "log group only",
			settings: Settings{LogGroupName: "my-logs"},
		},
		{
			name: "all levels",
			settings: Settings{
				LogGroupName:        "my-logs",
				ApplicationLogLevel: ApplicationLogLevelTrace,
				SystemLogLevel:      SystemLogLevelWarn,
			},
		},
		{
			name:     "invalid application level",
			settings: Settings{ApplicationLogLevel: "VERBOSE"},
			wantErr:  `"VERBOSE" is not a valid applicationLogLevel`,
		},
		{
			name:     "system level does not accept FATAL",
			settings: Settings{SystemLogLevel: "FATAL"},
			wantErr:  "DEBUG | INFO | WARN",
		},
		{
			name:     "levels are case sensitive",
			settings: Settings{ApplicationLogLevel: "debug"},
			wantErr:  "applicationLogLevel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.settings)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecode(t *testing.T) {
	s, err := decodeBody(t, `
enableJson: true
logGroupName: my-logs
applicationLogLevel: INFO
systemLogLevel: WARN
useDefaultLogGroup:
  - world
`)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.True(t, s.EnableJSON)
	assert.Equal(t, "my-logs", s.LogGroupName)
	assert.Equal(t, ApplicationLogLevelInfo, s.ApplicationLogLevel)
	assert.Equal(t, SystemLogLevelWarn, s.SystemLogLevel)
	assert.Equal(t, []string{"world"}, s.UseDefaultLogGroup)
}

func TestDecode_Absent(t *testing.T) {
	s, err := decodeBody(t, "")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = decodeBody(t, "~")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestDecode_WrongShape(t *testing.T) {
	_, err := decodeBody(t, "- a\n- b\n")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "must be a map")

	_, err = decodeBody(t, "enableJson: [1, 2]\n")
	require.ErrorAs(t, err, &cfgErr)
}

func TestSettings_Helpers(t *testing.T) {
	var nilSettings *Settings
	assert.False(t, nilSettings.HasLogGroup())
	assert.Empty(t, nilSettings.Excluded())
	assert.Equal(t, "Text", nilSettings.LogFormat())

	s := &Settings{LogGroupName: "my-logs", EnableJSON: true, UseDefaultLogGroup: []string{"world", "legacy"}}
	assert.True(t, s.HasLogGroup())
	assert.Equal(t, map[string]bool{"world": true, "legacy": true}, s.Excluded())
	assert.Equal(t, "JSON", s.LogFormat())
}

func TestLogLevels_Valid(t *testing.T) {
	for _, l := range ApplicationLogLevels {
		assert.True(t, l.Valid(), l)
	}
	for _, l := range SystemLogLevels {
		assert.True(t, l.Valid(), l)
	}
	assert.False(t, SystemLogLevel("TRACE").Valid())
	assert.False(t, ApplicationLogLevel("").Valid())
}
