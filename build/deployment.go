package build

// DeploymentType selects between the development and production flavours of
// the binary. The active flavour is chosen with the dev build tag.
type DeploymentType byte

const (
	// Development builds honour the stdlog and nolog tags so unit tests
	// can route every subsystem straight to stdout.
	Development DeploymentType = iota

	// Production builds always log through the handlers the application
	// sets up.
	Production
)

// String returns the name of the deployment flavour.
func (b DeploymentType) String() string {
	names := map[DeploymentType]string{
		Development: "development",
		Production:  "production",
	}
	if name, ok := names[b]; ok {
		return name
	}

	return "unknown"
}
