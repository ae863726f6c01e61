package config

import (
	"path/filepath"
	"testing"
)

func TestLogsDirOverrides(t *testing.T) {
	t.Setenv(LogDirEnv, "/tmp/from-env")
	if got := LogsDir("/tmp/from-settings"); got != "/tmp/from-env" {
		t.Errorf("LogsDir with env = %q, want /tmp/from-env", got)
	}

	t.Setenv(LogDirEnv, "")
	if got := LogsDir("/tmp/from-settings"); got != "/tmp/from-settings" {
		t.Errorf("LogsDir with settings = %q, want /tmp/from-settings", got)
	}
}

func TestDistLogsDir(t *testing.T) {
	tests := []struct {
		name   string
		exe    string
		want   string
		wantOK bool
	}{
		{name: "packaged", exe: filepath.Join("/opt", "nsynca", "dist", "nsynca"), want: filepath.Join("/opt", "nsynca", "dist", "logs"), wantOK: true},
		{name: "dev build", exe: filepath.Join("/home", "me", "go", "bin", "nsynca")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := distLogsDir(tt.exe)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("distLogsDir(%q) = %q, %v; want %q, %v", tt.exe, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
