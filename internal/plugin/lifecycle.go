package plugin

import "fmt"

// Lifecycle hook names, in the order they run.
const (
	HookInitialize                = "initialize"
	HookBeforePackageInitialize   = "before:package:initialize"
	HookAfterPackageCompileEvents = "after:package:compileEvents"
	HookBeforePackageFinalize     = "before:package:finalize"
)

// Hook is a named lifecycle step.
type Hook struct {
	Name string
	Run  func(ctx *Context) error
}

// Lifecycle runs the plugin hooks in order.
type Lifecycle struct {
	hooks []Hook
}

// Lifecycle returns the ordered hooks of the plugin.
func (p *Plugin) Lifecycle() *Lifecycle {
	return &Lifecycle{
		hooks: []Hook{
			{Name: HookInitialize, Run: func(*Context) error {
				return p.Init()
			}},
			{Name: HookBeforePackageInitialize, Run: func(ctx *Context) error {
				p.DisableFunctionLogs(ctx)
				return nil
			}},
			{Name: HookAfterPackageCompileEvents, Run: func(ctx *Context) error {
				p.SetLoggingConfig(ctx)
				return nil
			}},
			{Name: HookBeforePackageFinalize, Run: func(ctx *Context) error {
				p.AddIamPermissions(ctx)
				return nil
			}},
		},
	}
}

// Hooks returns the hook names in run order.
func (l *Lifecycle) Hooks() []string {
	names := make([]string, len(l.hooks))
	for i, h := range l.hooks {
		names[i] = h.Name
	}
	return names
}

// Run executes every hook in order, stopping at the first error.
func (l *Lifecycle) Run(ctx *Context) error {
	for _, h := range l.hooks {
		if err := h.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", h.Name, err)
		}
	}
	return nil
}

// RunHook executes a single hook by name.
func (l *Lifecycle) RunHook(name string, ctx *Context) error {
	for _, h := range l.hooks {
		if h.Name == name {
			return h.Run(ctx)
		}
	}
	return fmt.Errorf("unknown hook: %s", name)
}
