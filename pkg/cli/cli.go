package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/trace/pkg/logger"
)

// DefaultTimeout 1回の実行に許される時間のデフォルト値
const DefaultTimeout = time.Second

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	Script       string             // インラインで指定されたスクリプト
	File         string             // スクリプトファイルのパス（-f）
	Example      string             // 埋め込みサンプルの名前（--example）
	Args         []float64          // スクリプト引数（メモリのスロット1以降）
	Timeout      time.Duration      // 実行時間の上限（0は無制限）
	LogLevel     string             // ログレベル（debug, info, warn, error）
	Encoding     string             // スクリプトファイルのエンコーディング
	Libraries    []string           // 追加のライブラリファイル
	Variables    map[string]float64 // 実行前に設定する変数
	Seed         uint64             // 乱数のシード
	HasSeed      bool               // シードが指定されたか
	Metrics      bool               // 実行後にメトリクスを出力
	PrintVars    bool               // 実行後に変数の一覧を出力
	ListExamples bool               // 埋め込みサンプルの一覧を表示
	ConfigFile   string             // YAML設定ファイル
	ShowHelp     bool               // ヘルプ表示フラグ
}

// ParseArgs コマンドライン引数を解析してConfigを返す
// 優先順位: コマンドラインフラグ > 環境変数 > 設定ファイル > デフォルト値
func ParseArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{Variables: make(map[string]float64)}

	var timeoutMs int
	var seed uint64
	fs.StringVar(&config.File, "file", "", "スクリプトファイル")
	fs.StringVar(&config.File, "f", "", "スクリプトファイル（短縮形）")
	fs.StringVar(&config.Example, "example", "", "埋め込みサンプルの名前")
	fs.IntVar(&timeoutMs, "timeout", 0, "実行時間の上限（ミリ秒）")
	fs.IntVar(&timeoutMs, "t", 0, "実行時間の上限（ミリ秒）（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.StringVar(&config.Encoding, "encoding", "utf-8", "スクリプトファイルのエンコーディング")
	fs.Func("lib", "追加のライブラリファイル（複数指定可）", func(s string) error {
		config.Libraries = append(config.Libraries, s)
		return nil
	})
	fs.Func("set", "変数の初期値 name=value（複数指定可）", func(s string) error {
		name, value, err := parseAssignment(s)
		if err != nil {
			return err
		}
		config.Variables[name] = value
		return nil
	})
	fs.Uint64Var(&seed, "seed", 0, "乱数のシード")
	fs.BoolVar(&config.Metrics, "metrics", false, "実行後にメトリクスを出力")
	fs.BoolVar(&config.PrintVars, "vars", false, "実行後に変数の一覧を出力")
	fs.BoolVar(&config.ListExamples, "list-examples", false, "埋め込みサンプルの一覧を表示")
	fs.StringVar(&config.ConfigFile, "config", "", "YAML設定ファイル")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		return nil, err
	}

	// 明示的に指定されたフラグを記録
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	timeoutSet := set["timeout"] || set["t"]
	logLevelSet := set["log-level"] || set["l"]

	if set["seed"] {
		config.Seed = seed
		config.HasSeed = true
	}

	// 設定ファイル（コマンドラインフラグが優先）
	timeout := DefaultTimeout
	if config.ConfigFile != "" {
		fc, err := LoadFile(config.ConfigFile)
		if err != nil {
			return nil, err
		}
		if fc.Timeout != nil {
			timeout = time.Duration(*fc.Timeout) * time.Millisecond
		}
		fc.apply(config, set)
	}

	// 環境変数からタイムアウトを取得（コマンドラインフラグが優先）
	if !timeoutSet {
		if timeoutEnv := os.Getenv("TRACE_TIMEOUT"); timeoutEnv != "" {
			ms, err := strconv.Atoi(timeoutEnv)
			if err != nil {
				return nil, fmt.Errorf("invalid TRACE_TIMEOUT: %s", timeoutEnv)
			}
			timeout = time.Duration(ms) * time.Millisecond
		}
	} else {
		// タイムアウトの検証
		if timeoutMs < 0 {
			return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutMs)
		}
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	if timeout < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %v", timeout)
	}
	config.Timeout = timeout

	// 環境変数からログレベルを取得（コマンドラインフラグが優先）
	if !logLevelSet {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = logLevelEnv
		}
	}
	config.LogLevel = strings.ToLower(config.LogLevel)

	// ログレベルの検証
	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if config.File != "" && config.Example != "" {
		return nil, fmt.Errorf("--file and --example cannot be used together")
	}

	// 位置引数: ファイル指定がなければ最初の引数がスクリプト、残りはスクリプト引数
	positional := fs.Args()
	if config.File == "" && config.Example == "" && len(positional) > 0 {
		config.Script = positional[0]
		positional = positional[1:]
	}
	for _, arg := range positional {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid script argument %q: must be a number", arg)
		}
		config.Args = append(config.Args, v)
	}

	if !config.ShowHelp && !config.ListExamples && config.Script == "" && config.File == "" && config.Example == "" {
		return nil, fmt.Errorf("no script given")
	}

	return config, nil
}

// parseAssignment "name=value" を分解する
func parseAssignment(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid assignment %q: expected name=value", s)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid assignment %q: %w", s, err)
	}
	return name, value, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
// 定義済みのフラグ名に一致しない引数（"-1+2" や "-3" など）と "--" 以降は位置引数として扱う
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		f := lookupFlag(fs, arg)
		if f == nil {
			// 位置引数
			positional = append(positional, arg)
			continue
		}

		flags = append(flags, arg)

		// -name=value の形式とboolフラグは値を取らない
		if strings.Contains(arg, "=") || isBoolFlag(f) {
			continue
		}
		// 次の引数を値として追加
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(append(flags, "--"), positional...)
}

// lookupFlag "-name", "--name", "-name=value" 形式の引数に対応するフラグを返す
func lookupFlag(fs *flag.FlagSet, arg string) *flag.Flag {
	if len(arg) < 2 || arg[0] != '-' {
		return nil
	}
	name := strings.TrimPrefix(arg[1:], "-")
	name, _, _ = strings.Cut(name, "=")
	if name == "" {
		return nil
	}
	return fs.Lookup(name)
}

// isBoolFlag フラグが値を取らないかどうか
func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `trace - formula script runtime

Usage:
  trace [options] <script> [args...]
  trace [options] -f <file> [args...]
  trace [options] --example <name> [args...]

Arguments:
  script        インラインのスクリプト（例: "1+2*3"）
  args          スクリプト引数（数値）。メモリの &1, &2, ... に格納される

Options:
  -f, --file <path>           スクリプトファイルを実行
  --example <name>            埋め込みサンプルを実行
  -t, --timeout <ms>          実行時間の上限（ミリ秒、0は無制限、デフォルト: 1000）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --encoding <name>           ファイルのエンコーディング: utf-8, shift_jis, euc-jp
  --lib <file.yaml>           追加のライブラリ（複数指定可）
  --set <name=value>          変数の初期値（複数指定可）
  --seed <n>                  乱数のシード
  --metrics                   実行後にPrometheus形式のメトリクスを出力
  --vars                      実行後に変数を name=value 形式で出力
  --list-examples             埋め込みサンプルの一覧を表示
  --config <file.yaml>        YAML設定ファイル
  -h, --help                  このヘルプを表示

Environment Variables:
  TRACE_TIMEOUT=<ms>          実行時間の上限（ミリ秒）
  LOG_LEVEL=<level>           ログレベル

Examples:
  trace "1+2*3"                      7 を出力
  trace "[a,b]a*b" 6 7               42 を出力
  trace -f dice.trace --seed 1       シードを固定してファイルを実行
  trace --set value=40 "chance()"    40%%の確率で 1 を出力
`)
}
