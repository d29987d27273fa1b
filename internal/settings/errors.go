package settings

import (
	"strings"
)

// ConfigError is a fatal configuration problem. It halts the lifecycle.
type ConfigError struct {
	// Field is the offending key, or the namespace when the section is missing
	Field string
	// Reason is a one-line description
	Reason string
	// Allowed lists accepted values, if the field is an enum
	Allowed []string
	// Hint is example configuration appended to the message
	Hint string
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString(Namespace)
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if len(e.Allowed) > 0 {
		sb.WriteString(" Allowed values: ")
		sb.WriteString(strings.Join(e.Allowed, " | "))
	}
	if e.Hint != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Hint)
	}
	return sb.String()
}

const exampleConfig = `For example, like this

  custom:
    serverless-logging-config:
      enableJson: true # [Optional] set the LogFormat to JSON
      logGroupName: "my-logs" # [Optional] all functions send logs to the "my-logs" log group
      applicationLogLevel: DEBUG | ERROR | FATAL | INFO | TRACE | WARN
      systemLogLevel: DEBUG | INFO | WARN
      useDefaultLogGroup: # [Optional] functions that keep their own log group
        - world

See this page for more info on what these settings mean:
https://docs.aws.amazon.com/AWSCloudFormation/latest/UserGuide/aws-properties-lambda-function-loggingconfig.html
`

const missingSectionHint = `You need to configure this plugin by adding a "` + Namespace + `" section under "custom".
` + exampleConfig
