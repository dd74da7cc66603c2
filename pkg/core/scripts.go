package core

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
)

// runScripts executes every executable file in dir, in name order, with env added
// to the current environment. A missing or empty dir is not an error.
func runScripts(dir string, env map[string]string, logger *log.Entry) error {
	if dir == "" {
		return nil
	}
	files, err := os.ReadDir(dir)
	// if the directory does not exist, do not worry about it
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading scripts directory %s: %w", dir, err)
	}
	envSlice := os.Environ()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		envSlice = append(envSlice, fmt.Sprintf("%s=%s", k, env[k]))
	}
	for _, f := range files {
		// ignore directories and any files we cannot execute
		fi, err := f.Info()
		if err != nil {
			return fmt.Errorf("error getting file info %s: %w", f.Name(), err)
		}
		if f.IsDir() || fi.Mode()&0111 == 0 {
			continue
		}
		logger.Debugf("running script %s", f.Name())
		cmd := exec.Command(filepath.Join(dir, f.Name()))
		cmd.Env = envSlice
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("error running file %s: %w: %s", f.Name(), err, out)
		}
	}
	return nil
}

func scriptEnv(archive, source, target, algorithm string, debug bool) map[string]string {
	return map[string]string{
		"ARCHIVE_FILE":      archive,
		"SOURCE_DIR":        source,
		"TARGET_DIR":        target,
		"ARCHIVE_ALGORITHM": algorithm,
		"ARCHIVE_DEBUG":     fmt.Sprintf("%v", debug),
	}
}
