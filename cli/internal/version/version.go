// Package version reports the magicorm build: release version, VCS state
// stamped by the Go toolchain, and the backends compiled into the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/satishbabariya/magicorm/driver"
)

// Version is the release version. Release builds set it with
// -ldflags "-X .../cli/internal/version.Version=x.y.z"; otherwise the
// module version from the build info is used.
var Version = "0.1.0"

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Modified  bool
	GoVersion string
	Platform  string
	Drivers   []string
}

// Get returns the information of the running binary.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	info := fromBuildInfo(bi)
	info.Drivers = driver.Drivers()
	return info
}

func fromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		Commit:    "unknown",
		BuildTime: "unknown",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return info
	}

	// "go install module@vX.Y.Z" stamps the main module version.
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = strings.TrimPrefix(v, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
			if len(info.Commit) > 12 {
				info.Commit = info.Commit[:12]
			}
		case "vcs.time":
			info.BuildTime = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String returns the one line form.
func (i Info) String() string {
	return fmt.Sprintf("magicorm version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString returns the multi-line form printed by "magicorm version".
func (i Info) FullString() string {
	commit := i.Commit
	if i.Modified {
		commit += "-dirty"
	}
	drivers := "none"
	if len(i.Drivers) > 0 {
		drivers = strings.Join(i.Drivers, ", ")
	}
	return fmt.Sprintf(`magicorm version %s
Commit: %s
Built: %s
Platform: %s
Go Version: %s
Drivers: %s`, i.Version, commit, i.BuildTime, i.Platform, i.GoVersion, drivers)
}
