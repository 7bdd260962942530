package programmer

import (
	"os"
	"path/filepath"
	"runtime"
)

// toolExeName returns the vendor CLI executable name for the current OS.
func toolExeName() string {
	if runtime.GOOS == "windows" {
		return "STM32_Programmer_CLI.exe"
	}
	return "STM32_Programmer_CLI"
}

// ResolveTool turns a configured tool path into an executable path. A path
// naming a directory (an install dir or its bin/) is searched for the CLI;
// anything else is returned unchanged and left for exec to reject.
func ResolveTool(path string) string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path
	}

	for _, dir := range []string{path, filepath.Join(path, "bin")} {
		candidate := filepath.Join(dir, toolExeName())
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate
		}
	}
	return path
}
