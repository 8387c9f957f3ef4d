//go:build dev

package build

const (
	// Deployment specifies a development build.
	Deployment = Development

	// LogLevel is the default level of loggers built for stdout.
	LogLevel = "debug"
)
