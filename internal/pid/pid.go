// Package pid keeps a PID file per name so two processes cannot drive the
// same output at once.
package pid

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/speedometer/internal/errors"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// File is a PID file guarding one name.
type File struct {
	path string
}

// New returns the PID file for name inside dir; an empty dir means the
// system temp directory.
func New(dir, name string) *File {
	if dir == "" {
		dir = os.TempDir()
	}
	name = unsafeChars.ReplaceAllString(name, "_")

	return &File{path: filepath.Join(dir, "speedometer-"+name+".pid")}
}

// Path returns the location of the PID file.
func (f *File) Path() string {
	return f.path
}

// Write writes the current process ID to the PID file. A file left by a
// process that is no longer running is taken over.
func (f *File) Write() error {
	errFactory := errors.New()
	pid := os.Getpid()

	if _, err := os.Stat(f.path); err == nil {
		// PID file exists, check if the process is running
		bytes, err := os.ReadFile(f.path)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		other, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
		if err == nil && other != pid && running(other) {
			return errFactory.WithData(errors.ErrAlreadyRunning, other)
		}
	}

	if err := os.WriteFile(f.path, []byte(strconv.Itoa(pid)), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func running(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}
