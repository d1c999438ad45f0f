// Package buildinfo provides build version and metadata information.
package buildinfo

import "runtime/debug"

// Version metadata is injected at build time via ldflags. When left empty,
// module and VCS data recorded by the Go toolchain are used instead.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Summary returns a human-readable version summary string.
func Summary() string {
	version, commit, date := resolve()
	out := version
	switch {
	case commit != "" && date != "":
		out += " (" + commit + " " + date + ")"
	case commit != "":
		out += " (" + commit + ")"
	case date != "":
		out += " (" + date + ")"
	}
	return out
}

func resolve() (version, commit, date string) {
	version, commit, date = Version, Commit, Date
	if version == "" {
		version = "dev"
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit, date
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "" && len(s.Value) >= 12 {
				commit = s.Value[:12]
			}
		case "vcs.time":
			if date == "" {
				date = s.Value
			}
		}
	}
	return version, commit, date
}
