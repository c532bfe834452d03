// Package version resolves current module version.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/hashicorp/go-version"
)

const modulePath = "github.com/go-faster/ttree"

var once struct {
	version Value
	sync.Once
}

// Value describes module version.
type Value struct {
	Major int
	Minor int
	Patch int
	Name  string // pre-release, like "alpha" or "dev"
	Raw   string
}

func (v Value) String() string {
	if v.Raw == "" {
		return dev.Raw
	}
	return v.Raw
}

// Dev reports whether v is not a release version.
func (v Value) Dev() bool {
	return v.Name == dev.Name
}

// dev is zero-versioned development version, used when module is
// built from source tree or version is not a valid semver.
var dev = Value{
	Name: "dev",
	Raw:  "0.0.1-dev",
}

// Extract version Value from BuildInfo.
func Extract(info *debug.BuildInfo) Value {
	raw := moduleVersion(info)
	v, err := version.NewVersion(raw)
	if err != nil {
		return dev
	}
	out := Value{
		Name: v.Prerelease(),
		Raw:  raw,
	}
	if s := v.Segments(); len(s) > 2 {
		out.Major, out.Minor, out.Patch = s[0], s[1], s[2]
	}
	return out
}

func moduleVersion(info *debug.BuildInfo) string {
	for _, d := range info.Deps {
		if d.Path == modulePath || strings.HasPrefix(d.Path, modulePath+"/") {
			return d.Version
		}
	}
	if strings.HasPrefix(info.Main.Path, modulePath) && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return ""
}

// Get optimistically gets current module version.
//
// Does not handle replace directives.
func Get() Value {
	once.Do(func() {
		once.version = dev
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		once.version = Extract(info)
	})

	return once.version
}

// UserAgent returns identity of module for logs and traces.
func UserAgent() string {
	return fmt.Sprintf("ttree/%s", Get())
}
