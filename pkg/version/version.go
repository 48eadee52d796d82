// Package version reports the build version of the simulator.
package version

// version is overridden at build time:
//
//	go build -ldflags "-X possim/pkg/version.version=1.2.0" ./cmd/server
var version = "dev"

// Version returns the build version.
func Version() string {
	return version
}
