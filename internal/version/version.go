// Package version reports the notifier's build identity.
//
// Release builds stamp it via ldflags:
//
//	go build -ldflags "-X github.com/bell24h/realtime/internal/version.Version=1.0.0 \
//	                   -X github.com/bell24h/realtime/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/bell24h/realtime/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds fall back to the VCS settings the toolchain embeds.
package version

import (
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

// Set via ldflags.
var (
	Version   = "dev"
	Commit    = unknown
	BuildTime = unknown
)

// Info is the resolved build identity.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
	Modified  bool // Built from a dirty tree
}

// Get resolves the build identity, preferring ldflags values.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.applySettings(bi.Settings)
	}
	return info
}

func (i *Info) applySettings(settings []debug.BuildSetting) {
	for _, s := range settings {
		if s.Value == "" {
			continue
		}
		switch s.Key {
		case "vcs.revision":
			if i.Commit == unknown {
				i.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if i.BuildTime == unknown {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func (i Info) String() string {
	commit := i.Commit
	if i.Modified {
		commit += "-dirty"
	}
	return i.Version + " (" + commit + ") built " + i.BuildTime + " " + i.GoVersion
}

// String returns a one-line version string for -version output.
func String() string {
	return Get().String()
}
