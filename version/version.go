// Package version holds the build-time identity the --version CLI
// verb reports, the idiomatic Go analogue of the original build's
// compiled-in version constants (cli_version_tests.cpp). Version,
// Commit, and BuildType are meant to be overridden at link time via
// -ldflags "-X github.com/curlee-lang/curlee/version.Version=...".
package version

// Version is the curlee release this binary was built from, e.g.
// "0.1.0". Left at "0.0.0-dev" for unreleased/local builds.
var Version = "0.0.0-dev"

// Commit is the short (8-hex-digit) VCS revision this binary was built
// from, or "unknown" when not injected by the build.
var Commit = "unknown"

// BuildType describes the build configuration, e.g. "release" or
// "debug".
var BuildType = "debug"

// String renders the --version line: "curlee <semver> sha=<8-hex|unknown> build=<type>".
func String() string {
	return "curlee " + Version + " sha=" + Commit + " build=" + BuildType
}
