package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags "-X" at release build time
var (
	App       = "StravaExport"
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	BuildOS   string
	BuildArch string
)

// Info is the resolved build metadata
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
	Platform  string
}

// Get resolves build metadata, falling back to the module build info
// embedded by the Go toolchain when ldflags were not set.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
	}
	if BuildOS != "" && BuildArch != "" {
		info.Platform = BuildOS + "/" + BuildArch
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		if info.GoVersion == "" {
			info.GoVersion = bi.GoVersion
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev"
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// UserAgent identifies outbound requests to Strava
func UserAgent() string {
	return fmt.Sprintf("%s/%s", App, Get().Version)
}

// PrintVersion prints the version information
func PrintVersion() {
	info := Get()
	fmt.Printf("%s version %s\n", App, info.Version)
	if info.Commit != "" {
		fmt.Printf("Git commit: %s\n", info.Commit)
	}
	if info.BuildTime != "" {
		fmt.Printf("Build time: %s\n", info.BuildTime)
	}
	if info.GoVersion != "" {
		fmt.Printf("Go version: %s\n", info.GoVersion)
	}
	if info.Platform != "" {
		fmt.Printf("Built for: %s\n", info.Platform)
	}
}
