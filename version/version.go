// Package version reports which build of motif is running.
package version

import (
	"runtime/debug"
	"strings"
)

// Version can be set when building:
// go build -ldflags "-X github.com/motifvae/motif/version.Version=v1.0.0"
var Version string

type Info struct {
	Version   string
	Revision  string
	Modified  bool
	GoVersion string
}

// Read collects the version information embedded in the binary.
func Read() Info {
	ret := Info{Version: Version}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ret
	}
	ret.GoVersion = info.GoVersion
	if ret.Version == "" && info.Main.Version != "(devel)" {
		ret.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			ret.Revision = s.Value[:min(7, len(s.Value))]
		case "vcs.modified":
			ret.Modified = s.Value == "true"
		}
	}
	return ret
}

// String returns the version, or the short revision hash when no version is
// known.
func (i Info) String() string {
	var b strings.Builder
	switch {
	case i.Version != "":
		b.WriteString(i.Version)
	case i.Revision != "":
		b.WriteString(i.Revision)
		if i.Modified {
			b.WriteString("-dirty")
		}
	default:
		b.WriteString("unknown")
	}
	return b.String()
}
