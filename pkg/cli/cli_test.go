package cli

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// clearEnv 環境変数の影響を受けないようにする
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TRACE_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")
}

func TestParseArgs_ValidArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name: "インラインスクリプト",
			args: []string{"1+2*3"},
			expected: Config{
				Script:   "1+2*3",
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "utf-8",
			},
		},
		{
			name: "スクリプト引数",
			args: []string{"[a,b]a*b", "6", "-7.5"},
			expected: Config{
				Script:   "[a,b]a*b",
				Args:     []float64{6, -7.5},
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "utf-8",
			},
		},
		{
			name: "ファイル指定",
			args: []string{"-f", "dice.trace", "3"},
			expected: Config{
				File:     "dice.trace",
				Args:     []float64{3},
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "utf-8",
			},
		},
		{
			name: "フラグが後ろにある場合",
			args: []string{"x+1", "--timeout", "250", "--set", "x=2"},
			expected: Config{
				Script:    "x+1",
				Timeout:   250 * time.Millisecond,
				LogLevel:  "info",
				Encoding:  "utf-8",
				Variables: map[string]float64{"x": 2},
			},
		},
		{
			name: "タイムアウト0は無制限",
			args: []string{"-t", "0", "1"},
			expected: Config{
				Script:   "1",
				Timeout:  0,
				LogLevel: "info",
				Encoding: "utf-8",
			},
		},
		{
			name: "複数のライブラリと変数",
			args: []string{"--lib", "a.yaml", "--lib=b.yaml", "--set", "value=40", "--set=n=-1", "chance()"},
			expected: Config{
				Script:    "chance()",
				Timeout:   DefaultTimeout,
				LogLevel:  "info",
				Encoding:  "utf-8",
				Libraries: []string{"a.yaml", "b.yaml"},
				Variables: map[string]float64{"value": 40, "n": -1},
			},
		},
		{
			name: "シードとメトリクス",
			args: []string{"--seed", "42", "--metrics", "1~6"},
			expected: Config{
				Script:   "1~6",
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "utf-8",
				Seed:     42,
				HasSeed:  true,
				Metrics:  true,
			},
		},
		{
			name: "-- 以降は位置引数",
			args: []string{"-l", "WARN", "--", "-1+2", "-3"},
			expected: Config{
				Script:   "-1+2",
				Args:     []float64{-3},
				Timeout:  DefaultTimeout,
				LogLevel: "warn",
				Encoding: "utf-8",
			},
		},
		{
			name: "負号で始まるスクリプト",
			args: []string{"-1+2"},
			expected: Config{
				Script:   "-1+2",
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "utf-8",
			},
		},
		{
			name: "負号で始まるスクリプトと引数",
			args: []string{"-5*2", "3"},
			expected: Config{
				Script:   "-5*2",
				Args:     []float64{3},
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "utf-8",
			},
		},
		{
			name: "負号で始まるスクリプトとフラグ",
			args: []string{"-x+1", "--set", "x=4", "-t", "10"},
			expected: Config{
				Script:    "-x+1",
				Timeout:   10 * time.Millisecond,
				LogLevel:  "info",
				Encoding:  "utf-8",
				Variables: map[string]float64{"x": 4},
			},
		},
		{
			name: "二重否定のスクリプトはフラグではない",
			args: []string{"--value", "7"},
			expected: Config{
				Script:   "--value",
				Args:     []float64{7},
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "utf-8",
			},
		},
		{
			name: "サンプル指定",
			args: []string{"--example", "countdown", "--encoding", "shift_jis"},
			expected: Config{
				Example:  "countdown",
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "shift_jis",
			},
		},
		{
			name: "サンプル一覧",
			args: []string{"--list-examples"},
			expected: Config{
				Timeout:      DefaultTimeout,
				LogLevel:     "info",
				Encoding:     "utf-8",
				ListExamples: true,
			},
		},
		{
			name: "変数の出力",
			args: []string{"--vars", "-x+1"},
			expected: Config{
				Script:    "-x+1",
				Timeout:   DefaultTimeout,
				LogLevel:  "info",
				Encoding:  "utf-8",
				PrintVars: true,
			},
		},
		{
			name: "ヘルプ",
			args: []string{"-h"},
			expected: Config{
				Timeout:  DefaultTimeout,
				LogLevel: "info",
				Encoding: "utf-8",
				ShowHelp: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(&tt.expected, config, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseArgs_Environment(t *testing.T) {
	t.Run("環境変数からタイムアウトとログレベル", func(t *testing.T) {
		t.Setenv("TRACE_TIMEOUT", "50")
		t.Setenv("LOG_LEVEL", "DEBUG")

		config, err := ParseArgs([]string{"1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Timeout != 50*time.Millisecond {
			t.Errorf("Timeout = %v, want 50ms", config.Timeout)
		}
		if config.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", config.LogLevel)
		}
	})

	t.Run("フラグが環境変数より優先", func(t *testing.T) {
		t.Setenv("TRACE_TIMEOUT", "50")
		t.Setenv("LOG_LEVEL", "debug")

		config, err := ParseArgs([]string{"-t", "300", "-l", "error", "1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Timeout != 300*time.Millisecond {
			t.Errorf("Timeout = %v, want 300ms", config.Timeout)
		}
		if config.LogLevel != "error" {
			t.Errorf("LogLevel = %q, want error", config.LogLevel)
		}
	})

	t.Run("不正な環境変数", func(t *testing.T) {
		t.Setenv("TRACE_TIMEOUT", "soon")
		t.Setenv("LOG_LEVEL", "")

		if _, err := ParseArgs([]string{"1"}); err == nil {
			t.Error("expected error for invalid TRACE_TIMEOUT")
		}
	})
}

func TestParseArgs_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "trace.yaml")
	doc := `timeout: 2000
log_level: warn
encoding: euc-jp
libraries: [base.yaml]
variables:
  value: 10
  x: 1
seed: 7
metrics: true
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := ParseArgs([]string{"--config", path, "--lib", "extra.yaml", "--set", "x=5", "-l", "debug", "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := &Config{
		Script:     "x",
		Timeout:    2 * time.Second,
		LogLevel:   "debug", // フラグが優先
		Encoding:   "euc-jp",
		Libraries:  []string{"base.yaml", "extra.yaml"},
		Variables:  map[string]float64{"value": 10, "x": 5},
		Seed:       7,
		HasSeed:    true,
		Metrics:    true,
		ConfigFile: path,
	}
	if diff := cmp.Diff(expected, config, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "負のタイムアウト",
			args: []string{"--timeout", "-10", "1"},
		},
		{
			name: "無効なログレベル",
			args: []string{"--log-level", "invalid", "1"},
		},
		{
			name: "無効なログレベル（短縮形）",
			args: []string{"-l", "trace", "1"},
		},
		{
			name: "スクリプトなし",
			args: []string{},
		},
		{
			name: "数値でないスクリプト引数",
			args: []string{"1", "abc"},
		},
		{
			name: "不正な --set",
			args: []string{"--set", "novalue", "1"},
		},
		{
			name: "--file と --example の同時指定",
			args: []string{"-f", "a.trace", "--example", "b"},
		},
		{
			name: "存在しない設定ファイル",
			args: []string{"--config", "/nonexistent/trace.yaml", "1"},
		},
		{
			name: "値のないフラグ",
			args: []string{"1", "--set"},
		},
		{
			name: "スクリプトの後の数値でない引数",
			args: []string{"-1+2", "-x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReorderArgs(t *testing.T) {
	newFlagSet := func() *flag.FlagSet {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.Int("t", 0, "")
		fs.String("set", "", "")
		fs.Bool("metrics", false, "")
		return fs
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "フラグを前に移動",
			args: []string{"1+1", "-t", "5", "--metrics", "2", "-3"},
			want: []string{"-t", "5", "--metrics", "--", "1+1", "2", "-3"},
		},
		{
			name: "負号で始まるスクリプト",
			args: []string{"-1+2"},
			want: []string{"--", "-1+2"},
		},
		{
			name: "スクリプトの後の引数を消費しない",
			args: []string{"-5*2", "3"},
			want: []string{"--", "-5*2", "3"},
		},
		{
			name: "name=value 形式",
			args: []string{"-x", "--set=x=1", "-t=7"},
			want: []string{"--set=x=1", "-t=7", "--", "-x"},
		},
		{
			name: "-- 以降",
			args: []string{"--", "-t", "5"},
			want: []string{"--", "-t", "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderArgs(newFlagSet(), tt.args)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("reorderArgs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	PrintHelp(&buf)

	for _, want := range []string{"Usage:", "--timeout", "TRACE_TIMEOUT", "40%の確率"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}
