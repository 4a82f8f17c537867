package types

import "go.trai.ch/zerr"

var (
	// ErrIntegrity is returned when the downloaded archive does not match the declared checksum.
	ErrIntegrity = zerr.New("archive checksum mismatch")

	// ErrChecksumMissing is returned when a formula declares no checksum, so the archive cannot be verified.
	ErrChecksumMissing = zerr.New("formula declares no sha256, archive cannot be verified")

	// ErrDownloadFailed is returned when the archive cannot be downloaded.
	ErrDownloadFailed = zerr.New("download failed")

	// ErrUnreachable is returned when the archive host cannot be reached.
	ErrUnreachable = zerr.New("archive host unreachable")

	// ErrArchiveInvalid is returned when the archive cannot be unpacked.
	ErrArchiveInvalid = zerr.New("invalid archive")

	// ErrUnsafeArchivePath is returned when an archive entry would escape the extraction directory.
	ErrUnsafeArchivePath = zerr.New("archive entry escapes extraction directory")

	// ErrSourceNotFound is returned when an install step names a file missing from the source tree.
	ErrSourceNotFound = zerr.New("install source not found")

	// ErrPatternNotFound is returned when an inreplace pattern matches no line.
	ErrPatternNotFound = zerr.New("inreplace pattern not found")

	// ErrInvalidPattern is returned when an inreplace pattern does not compile.
	ErrInvalidPattern = zerr.New("invalid inreplace pattern")

	// ErrUnknownStep is returned for an install step kind the installer does not know.
	ErrUnknownStep = zerr.New("unknown install step")

	// ErrDependencyMissing is returned when a declared dependency is not present on the system.
	ErrDependencyMissing = zerr.New("dependency missing")

	// ErrTestExitCode is returned when the smoke test exits with an unexpected status.
	ErrTestExitCode = zerr.New("test exited with unexpected status")

	// ErrTestOutput is returned when the smoke test output lacks the expected text.
	ErrTestOutput = zerr.New("test output does not contain expected text")

	// ErrTestRun is returned when the smoke test cannot be started.
	ErrTestRun = zerr.New("test could not run")

	// ErrFormulaNotFound is returned when no formula has the requested name.
	ErrFormulaNotFound = zerr.New("formula not found")

	// ErrFormulaInvalid is returned when a formula file fails validation.
	ErrFormulaInvalid = zerr.New("invalid formula")

	// ErrNotInstalled is returned when the package is missing from the lock file.
	ErrNotInstalled = zerr.New("package not installed")

	// ErrLockReadFailed is returned when the lock file cannot be read or parsed.
	ErrLockReadFailed = zerr.New("failed to read lock file")

	// ErrLockWriteFailed is returned when the lock file cannot be written.
	ErrLockWriteFailed = zerr.New("failed to write lock file")

	// ErrRemoveFailed is returned when an installed file cannot be deleted.
	ErrRemoveFailed = zerr.New("failed to remove installed files")

	// ErrPreviousInstall is returned when the files of an earlier install cannot be set aside or put back.
	ErrPreviousInstall = zerr.New("failed to preserve previous install")
)
