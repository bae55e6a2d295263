package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "sync.workers" or "sites.acme"
	Message string // e.g., "must be positive"
	Hint    string // e.g., "set sync.workers to at least 1"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ExpandHome replaces a leading ~ with the user's home directory and
// expands environment variables.
func ExpandHome(path string) (string, error) {
	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %v", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ValidateDataDir checks that path is a writable directory, or that the
// closest existing ancestor is, so the directory can be created on first
// sync.
func ValidateDataDir(path string) error {
	if path == "" {
		return fmt.Errorf("must not be empty")
	}
	expanded, err := ExpandHome(path)
	if err != nil {
		return err
	}

	dir := filepath.Clean(expanded)
	for {
		info, err := os.Stat(dir)
		switch {
		case err == nil && !info.IsDir():
			return fmt.Errorf("%s exists but is not a directory", dir)
		case err == nil:
			return ValidateDirWritable(dir)
		case !os.IsNotExist(err):
			return fmt.Errorf("cannot access %s: %v", dir, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// ValidateDirWritable validates that a directory exists and is writable.
func ValidateDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access directory: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory")
	}

	// Try to write a test file
	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte(""), 0644); err != nil {
		return fmt.Errorf("directory not writable: %v", err)
	}
	os.Remove(testFile)

	return nil
}

// ValidateHostPort validates a host:port address format.
func ValidateHostPort(hostPort string) error {
	i := strings.LastIndex(hostPort, ":")
	if i < 0 {
		return fmt.Errorf("expected format host:port")
	}

	host := hostPort[:i]
	port := hostPort[i+1:]

	if host == "" {
		return fmt.Errorf("host must not be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535; got %q", port)
	}

	return nil
}

// ValidateDomainSuffix checks a bare DNS suffix such as "drush.in".
func ValidateDomainSuffix(suffix string) error {
	if suffix == "" {
		return fmt.Errorf("must not be empty")
	}
	if strings.HasPrefix(suffix, ".") || strings.HasSuffix(suffix, ".") {
		return fmt.Errorf("must not start or end with a dot")
	}
	for _, label := range strings.Split(suffix, ".") {
		if label == "" || len(label) > 63 {
			return fmt.Errorf("invalid label %q", label)
		}
		for _, r := range label {
			if !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				return fmt.Errorf("invalid character %q in label %q", r, label)
			}
		}
	}
	return nil
}

// ValidatePort validates that a port number is in the valid range.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535; got %d", port)
	}
	return nil
}
