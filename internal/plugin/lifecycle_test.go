package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/logging-config-go/internal/settings"
)

func TestLifecycle_Hooks(t *testing.T) {
	p, _ := newTestPlugin(&settings.Settings{})

	assert.Equal(t, []string{
		HookInitialize,
		HookBeforePackageInitialize,
		HookAfterPackageCompileEvents,
		HookBeforePackageFinalize,
	}, p.Lifecycle().Hooks())
}

func TestLifecycle_Run(t *testing.T) {
	p, _ := newTestPlugin(&settings.Settings{
		EnableJSON:         true,
		LogGroupName:       logGroupName,
		UseDefaultLogGroup: []string{"world"},
	})
	ctx := newContext(allowLogs("*"))

	require.NoError(t, p.Lifecycle().Run(ctx))

	assert.True(t, ctx.Service.Functions["hello"].DisableLogs)
	assert.False(t, ctx.Service.Functions["world"].DisableLogs)
	assert.Equal(t, map[string]any{"LogGroup": logGroupName, "LogFormat": "JSON"},
		ctx.Template.Resources["HelloLambdaFunction"].Properties["LoggingConfig"])
	assert.Equal(t, []any{"*", sharedLogGroupArn}, firstStatement(ctx)["Resource"])
}

func TestLifecycle_RunStopsOnInitError(t *testing.T) {
	p, _ := newTestPlugin(nil)
	ctx := newContext(allowLogs("*"))

	err := p.Lifecycle().Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), HookInitialize+": ")
	assert.Contains(t, err.Error(), "No custom settings found")
	assert.NotContains(t, ctx.Template.Resources["HelloLambdaFunction"].Properties, "LoggingConfig")
}

func TestLifecycle_RunHook(t *testing.T) {
	tests := []struct {
		name    string
		hook    string
		wantErr string
	}{
		{name: "known hook", hook: HookAfterPackageCompileEvents},
		{name: "unknown hook", hook: "deploy:deploy", wantErr: "unknown hook: deploy:deploy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPlugin(&settings.Settings{LogGroupName: logGroupName})
			ctx := newContext(allowLogs("*"))

			err := p.Lifecycle().RunHook(tt.hook, ctx)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, ctx.Template.Resources["HelloLambdaFunction"].Properties, "LoggingConfig")
			// only the requested hook ran
			assert.False(t, ctx.Service.Functions["hello"].DisableLogs)
		})
	}
}
