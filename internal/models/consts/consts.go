package consts

import (
	"runtime"
	"time"
)

// All consts
const (
	GoblinBaseDir   = ".goblin"
	BinDir          = "bin"
	LibexecDir      = "libexec"
	CacheDir        = "cache"
	LockFilePath    = "goblin.lock"
	ConfigName      = "config"
	EnvPrefix       = "GOBLIN"
	CurrentOS       = runtime.GOOS
	CurrentArch     = runtime.GOARCH
	DirPerm         = 0o755
	FilePerm        = 0o644
	ExecPerm        = 0o755
	DefaultTimeout  = 5 * time.Minute
	ProbeTimeout    = 5 * time.Second
	TestTimeout     = 30 * time.Second
	DefaultLogLevel = "info"
)
