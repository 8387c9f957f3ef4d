//go:build !dev

package build

const (
	// Deployment specifies a production build.
	Deployment = Production

	// LogLevel is the default level of loggers built for stdout.
	LogLevel = "info"
)
