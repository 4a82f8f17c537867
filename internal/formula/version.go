package formula

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"golang.org/x/mod/semver"
)

var (
	archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.xz", ".tar.bz2", ".tar", ".zip"}
	versionRe       = regexp.MustCompile(`v?(\d+(?:\.\d+)+(?:-[0-9A-Za-z.]+)?)$`)
)

// Version returns the declared version, or the one found in the archive name
// (".../v0.2.0.tar.gz" gives "0.2.0"). It returns "" when neither exists.
func Version(f types.Formula) string {
	if f.Version != "" {
		return strings.TrimPrefix(f.Version, "v")
	}
	return VersionFromURL(f.URL)
}

// VersionFromURL extracts a version from the last path segment of an archive URL.
func VersionFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	m := versionRe.FindStringSubmatch(base)
	if m == nil {
		return ""
	}
	return m[1]
}

// CompareVersions orders two versions with or without the "v" prefix.
// An empty or unparsable version sorts before every valid one.
func CompareVersions(v1, v2 string) int {
	return semver.Compare(canonical(v1), canonical(v2))
}

func canonical(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
