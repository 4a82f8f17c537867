package types

import "time"

// StepKind names one install action of a formula.
type StepKind string

const (
	StepBin       StepKind = "bin"       // Copy one file into the bin directory
	StepLibexec   StepKind = "libexec"   // Copy files matching a glob into the private libexec directory
	StepInreplace StepKind = "inreplace" // Rewrite lines matching a pattern in an installed file
)

// Step is one entry of the ordered install procedure.
type Step struct {
	Kind        StepKind `yaml:"kind" json:"kind"`
	Source      string   `yaml:"source" json:"source"`                               // Path or glob in the unpacked source; inreplace names a file an earlier step installed
	Dest        string   `yaml:"dest,omitempty" json:"dest,omitempty"`               // Sub directory under libexec
	Pattern     string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`         // Regular expression, matched per line
	Replacement string   `yaml:"replacement,omitempty" json:"replacement,omitempty"` // May reference {{.Prefix}}, {{.Bin}}, {{.Libexec}}
}

// TestStep is the post-install smoke test.
type TestStep struct {
	Args     []string `yaml:"args,omitempty" json:"args,omitempty"`       // Arguments for the installed executable
	Unset    []string `yaml:"unset,omitempty" json:"unset,omitempty"`     // Environment variables removed before running
	ExitCode int      `yaml:"exit_code" json:"exit_code"`                 // Expected exit status
	Contains string   `yaml:"contains" json:"contains"`                   // Expected substring of stdout+stderr
	Timeout  string   `yaml:"timeout,omitempty" json:"timeout,omitempty"` // Parsed as a duration, empty means the config default
	Binary   string   `yaml:"binary,omitempty" json:"binary,omitempty"`   // Executable name, defaults to the formula name
}

// Formula is the static package descriptor consumed by the installer.
type Formula struct {
	Name      string   `yaml:"name" json:"name"`
	Desc      string   `yaml:"desc" json:"desc"`
	Homepage  string   `yaml:"homepage" json:"homepage"`
	URL       string   `yaml:"url" json:"url"`
	SHA256    string   `yaml:"sha256" json:"sha256"` // Empty means the archive cannot be verified
	Version   string   `yaml:"version,omitempty" json:"version,omitempty"`
	License   string   `yaml:"license" json:"license"`
	DependsOn []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Install   []Step   `yaml:"install" json:"install"`
	Test      TestStep `yaml:"test" json:"test"`
}

// Layout holds the manager-chosen directories for one package.
type Layout struct {
	Prefix  string // The goblin root, ex: ~/.goblin
	Bin     string // Shared executable directory
	Libexec string // Private support directory of the package
}

type LockFile struct {
	Packages []InstalledPackage `json:"packages"` // List installed packages
}

type InstalledPackage struct {
	ID           string    `json:"id"`            // Install receipt id
	Name         string    `json:"name"`          // Package name
	Version      string    `json:"version"`       // Installed version
	ResolvedFrom string    `json:"resolved_from"` // Archive URL the package was built from
	SHA256       string    `json:"sha256"`        // Digest computed while downloading
	Verified     bool      `json:"verified"`      // False when the formula carried no checksum
	InstallDate  time.Time `json:"install_date"`  // The date when the package was installed
	OS           string    `json:"os"`
	Arch         string    `json:"arch"`
	Path         string    `json:"path"`    // Installed executable
	Libexec      string    `json:"libexec"` // Private support directory
	Files        []string  `json:"files"`   // Every file written by the install
}

// Result statuses reported by sync and upgrade.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

type UpdateResult struct {
	Name            string // Name of the package
	PreviousVersion string // The old version
	NewVersion      string // The new, installed version
	Status          string // Update status
	Message         string // Detailled message (in case of error)
}
