// Package version reports the dronefly build and the bot host release the
// iNat plugin is built against.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/dronefly-project/dronefly/version.Version=...".
// When unset they are filled from the module's embedded build info.
var (
	Version    = ""
	CommitHash = ""
	BuildTime  = ""
)

// HostConstraint is the semver range of bot host releases the plugin
// supports. The plugin registry checks it against the running host.
const HostConstraint = ">= 3.5.0"

const unknown = "unknown"

// Info describes the running binary.
type Info struct {
	Version        string `json:"version"`
	CommitHash     string `json:"commit_hash"`
	BuildTime      string `json:"build_time"`
	Modified       bool   `json:"modified,omitempty"`
	HostConstraint string `json:"host_constraint"`
	GoVersion      string `json:"go_version"`
	Platform       string `json:"platform"`
}

// Get returns the build information, preferring ldflags values over the
// toolchain's embedded vcs stamps.
func Get() Info {
	return fromBuildInfo(debug.ReadBuildInfo())
}

func fromBuildInfo(bi *debug.BuildInfo, ok bool) Info {
	info := Info{
		Version:        Version,
		CommitHash:     CommitHash,
		BuildTime:      BuildTime,
		HostConstraint: HostConstraint,
		GoVersion:      runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
	}
	if ok && bi != nil {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.CommitHash == "" {
					info.CommitHash = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.CommitHash == "" {
		info.CommitHash = unknown
	}
	if info.BuildTime == "" {
		info.BuildTime = unknown
	}
	return info
}

// String is the one-line form shown by "dronefly version".
func (i Info) String() string {
	commit := i.Short()
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("dronefly %s (commit %s, built %s; host %s)", i.Version, commit, i.BuildTime, i.HostConstraint)
}

// Short is the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.CommitHash) > 7 && i.CommitHash != unknown {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
