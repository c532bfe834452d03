// Package otelttree provides OpenTelemetry instrumentation helpers for ttree.
package otelttree

import "github.com/go-faster/ttree/internal/version"

// Name of instrumentation, supplied to tracer/meter creation.
const Name = "github.com/go-faster/ttree"

// Version is the current release version of the ttree instrumentation.
func Version() string {
	return version.Get().Raw
}

// SemVersion is the semantic version to be supplied to tracer/meter creation.
func SemVersion() string {
	return "semver:" + Version()
}
