package plugin

// DisableFunctionLogs sets DisableLogs on every function not listed in
// useDefaultLogGroup, so the framework stops creating a log group per function.
// Without a logGroupName nothing is changed.
func (p *Plugin) DisableFunctionLogs(ctx *Context) {
	if !p.settings.HasLogGroup() || ctx.Service == nil {
		return
	}

	excluded := p.settings.Excluded()
	var disabled []string
	for _, name := range ctx.Service.FunctionNames() {
		if excluded[name] {
			continue
		}
		ctx.Service.Functions[name].DisableLogs = true
		disabled = append(disabled, name)
	}

	p.log.WithField("functions", disabled).Info("Disabled auto-generated Lambda log groups")
}
