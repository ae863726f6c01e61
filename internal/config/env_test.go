package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDotEnv(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
		wantErr bool
	}{
		{
			name:    "plain values",
			content: "NOTION_API_KEY=secret_abc\nTASKS_DB_ID=123\n",
			want:    map[string]string{"NOTION_API_KEY": "secret_abc", "TASKS_DB_ID": "123"},
		},
		{
			name:    "comments and blanks",
			content: "# token\n\nKEY=value # trailing\n",
			want:    map[string]string{"KEY": "value"},
		},
		{
			name:    "export prefix",
			content: "export KEY=value",
			want:    map[string]string{"KEY": "value"},
		},
		{
			name:    "double quotes",
			content: `KEY="a b # c"`,
			want:    map[string]string{"KEY": "a b # c"},
		},
		{
			name:    "single quotes",
			content: "KEY='a b'",
			want:    map[string]string{"KEY": "a b"},
		},
		{
			name:    "unbalanced single quote",
			content: "KEY='abc",
			wantErr: true,
		},
		{
			name:    "missing equals",
			content: "KEY",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDotEnv(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestLoadDotEnvKeepsProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NSYNCA_TEST_SET=fromfile\nNSYNCA_TEST_UNSET=fromfile\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NSYNCA_TEST_SET", "fromenv")
	t.Setenv("NSYNCA_TEST_UNSET", "")
	os.Unsetenv("NSYNCA_TEST_UNSET")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("NSYNCA_TEST_SET"); got != "fromenv" {
		t.Errorf("NSYNCA_TEST_SET = %q, want fromenv", got)
	}
	if got := os.Getenv("NSYNCA_TEST_UNSET"); got != "fromfile" {
		t.Errorf("NSYNCA_TEST_UNSET = %q, want fromfile", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestSetDotEnvValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("# keep\nNOTION_API_KEY=old\nOTHER=1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := SetDotEnvValue(path, "NOTION_API_KEY", "new"); err != nil {
		t.Fatalf("SetDotEnvValue: %v", err)
	}
	if err := SetDotEnvValue(path, "TASKS_DB_ID", "abc"); err != nil {
		t.Fatalf("SetDotEnvValue: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	env, err := ParseDotEnv(string(data))
	if err != nil {
		t.Fatalf("rewritten file does not parse: %v", err)
	}
	want := map[string]string{"NOTION_API_KEY": "new", "OTHER": "1", "TASKS_DB_ID": "abc"}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("%s = %q, want %q", k, env[k], v)
		}
	}
}
