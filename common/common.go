// Package common holds process-wide helpers shared by the binaries: the
// logger constructor and the build version.
package common

// PackageName is used as the Prometheus namespace and the default log service tag.
const PackageName = "tidvatten"

// Version is overridden at build time with
// -ldflags "-X github.com/tidvatten/tidvatten/common.Version=<tag>".
var Version = "dev"
