package validate

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidateHostPort(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", "8.8.8.8:53", false},
		{"ipv6", "[::1]:53", false},
		{"missing port", "8.8.8.8", true},
		{"empty host", ":53", true},
		{"bad port", "host:99999", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHostPort(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHostPort(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDomainSuffix(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"drush.in", false},
		{"example-1.co.uk", false},
		{"", true},
		{".drush.in", true},
		{"drush..in", true},
		{"dr_ush.in", true},
	}
	for _, tt := range tests {
		err := ValidateDomainSuffix(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDomainSuffix(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidateDataDir(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateDataDir(dir); err != nil {
		t.Fatalf("existing dir: %v", err)
	}
	if err := ValidateDataDir(filepath.Join(dir, "new", "deeper")); err != nil {
		t.Fatalf("creatable dir: %v", err)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDataDir(file); err == nil {
		t.Fatal("expected error for a regular file")
	}
	if err := ValidateDataDir(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestValidateSync(t *testing.T) {
	ok := SyncConfig{Workers: 4, Backoff: time.Second, Timeout: time.Minute, SSHPort: 2222, RsyncPath: "rsync"}
	if errs := ValidateSync(ok); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	bad := SyncConfig{Workers: 0, Retries: 2, Backoff: 0, Timeout: 0, SSHPort: 0}
	errs := ValidateSync(bad)
	if len(errs) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateResolver(t *testing.T) {
	errs := ValidateResolver(ResolverConfig{DomainSuffix: "drush.in", Timeout: time.Second})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	errs = ValidateResolver(ResolverConfig{DomainSuffix: "drush.in", Nameserver: "nope", Timeout: 0})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
}

func TestValidateLogging(t *testing.T) {
	if errs := ValidateLogging(LoggingConfig{Level: "debug"}); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if errs := ValidateLogging(LoggingConfig{Level: "trace"}); len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LOGS_DIR", "/srv/logs")

	tests := map[string]string{
		"~":             home,
		"~/site-logs":   filepath.Join(home, "site-logs"),
		"$LOGS_DIR/x":   "/srv/logs/x",
		"/abs/path":     "/abs/path",
		"~other/x":      "~other/x",
		"relative/path": "relative/path",
	}
	for in, want := range tests {
		got, err := ExpandHome(in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
