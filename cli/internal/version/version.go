package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// set through -ldflags, used when the module version is unknown (e.g. "(devel)").
var (
	gitVersion = "0.0.0-dev"
	gitCommit  string
	buildDate  = "1970-01-01T00:00:00Z"
)

type Info struct {
	Major      string `json:"major"`
	Minor      string `json:"minor"`
	Patch      string `json:"patch"`
	PreRelease string `json:"prerelease"`
	Meta       string `json:"meta"`
	GitVersion string `json:"gitVersion"`
	GitCommit  string `json:"gitCommit"`
	BuildDate  string `json:"buildDate"`
	GoVersion  string `json:"goVersion"`
	Compiler   string `json:"compiler"`
	Platform   string `json:"platform"`
}

// Get returns the version of the running binary.
// Pseudo versions carry build date and commit in their prerelease part.
func Get(bi *debug.BuildInfo) (Info, error) {
	raw := bi.Main.Version
	if _, err := semver.NewVersion(raw); err != nil {
		raw = gitVersion
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return Info{}, fmt.Errorf("could not parse version %q: %w", raw, err)
	}

	commit, date := gitCommit, buildDate
	if prerelease := v.Prerelease(); prerelease != "" {
		if d, c, ok := strings.Cut(prerelease, "-"); ok {
			date, commit = d, c
		}
	}

	return Info{
		Major:      strconv.FormatUint(v.Major(), 10),
		Minor:      strconv.FormatUint(v.Minor(), 10),
		Patch:      strconv.FormatUint(v.Patch(), 10),
		PreRelease: v.Prerelease(),
		Meta:       v.Metadata(),
		GitVersion: v.String(),
		GitCommit:  commit,
		BuildDate:  date,
		GoVersion:  bi.GoVersion,
		Compiler:   runtime.Compiler,
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}, nil
}
