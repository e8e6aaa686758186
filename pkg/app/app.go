package app

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zurustar/trace/pkg/cli"
	"github.com/zurustar/trace/pkg/fileutil"
	"github.com/zurustar/trace/pkg/logger"
	"github.com/zurustar/trace/pkg/metrics"
	"github.com/zurustar/trace/pkg/script"
	"github.com/zurustar/trace/pkg/stdlib"
	"github.com/zurustar/trace/pkg/vm"
)

// ExamplesDir 埋め込みファイルシステム内のサンプルスクリプトのディレクトリ
const ExamplesDir = "examples"

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config  *cli.Config
	log     *slog.Logger
	embedFS fs.FS
	stdout  io.Writer
	stderr  io.Writer

	metricsReg *prometheus.Registry
	collector  *metrics.Collector
	registry   *vm.Registry
}

// New Applicationを作成
// 結果とメトリクスと診断出力はstdoutに、ログはstderrに書き出す
func New(embedFS fs.FS, stdout, stderr io.Writer) *Application {
	return &Application{
		embedFS: embedFS,
		stdout:  stdout,
		stderr:  stderr,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	if app.config.ListExamples {
		return app.listExamples()
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 3. ライブラリの読み込み
	if err := app.initRegistry(); err != nil {
		return fmt.Errorf("failed to load libraries: %w", err)
	}

	// 4. スクリプトの読み込み
	source, name, err := app.loadSource()
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	app.log.Debug("Script loaded", "name", name, "preview", truncate(source, 100))

	// 5. トークン化（構文エラーがあっても読めた部分は実行する）
	program, err := app.registry.Compile(source)
	if err != nil {
		app.log.Warn("Syntax error, running the valid prefix", "name", name, "error", err)
	}
	app.log.Debug("Script tokenized", "tokens", len(program.Tokens), "memory", program.MemorySize)

	// 6. 実行
	machine := vm.New(app.vmOptions()...)
	result, runErr := machine.Run(program, app.config.Args, vm.WithVariables(app.config.Variables))

	stats := machine.LastRun()
	app.log.Debug("Run finished",
		"duration", stats.Duration,
		"tokens", stats.Tokens,
		"peak_frames", stats.PeakFrames,
		"timed_out", stats.TimedOut,
	)

	fmt.Fprintln(app.stdout, formatResult(result))
	if app.config.PrintVars {
		app.printVariables(program.Variables())
	}

	// 7. メトリクスの出力
	if app.config.Metrics {
		if err := metrics.Dump(app.stdout, app.metricsReg); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLoggerWithWriter(app.config.LogLevel, app.stderr); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	logger.SetDiagnostics(slog.New(slog.NewTextHandler(app.stdout, nil)))
	return nil
}

// initRegistry 標準ライブラリと追加ライブラリを登録したレジストリを作成
func (app *Application) initRegistry() error {
	app.metricsReg = prometheus.NewRegistry()
	app.collector = metrics.New(app.metricsReg)

	registry, err := stdlib.NewRegistry(
		vm.WithRegistryLogger(app.log),
		vm.WithRegistryMetrics(app.collector),
	)
	if err != nil {
		return err
	}

	for _, libPath := range app.config.Libraries {
		lib, err := stdlib.LoadFile(libPath)
		if err != nil {
			return err
		}
		if err := stdlib.Register(registry, lib); err != nil {
			return fmt.Errorf("%s: %w", libPath, err)
		}
		app.log.Debug("Library loaded", "path", libPath, "functions", len(lib.Functions))
	}

	app.registry = registry
	return nil
}

// loadSource 実行するスクリプトのソースと表示名を返す
func (app *Application) loadSource() (string, string, error) {
	enc, err := script.LookupEncoding(app.config.Encoding)
	if err != nil {
		return "", "", err
	}

	switch {
	case app.config.File != "":
		loader := script.NewLoader(filepath.Dir(app.config.File), script.WithEncoding(enc))
		s, err := loader.Load(filepath.Base(app.config.File))
		if err != nil {
			return "", "", err
		}
		return s.Content, app.config.File, nil

	case app.config.Example != "":
		fsys, err := fileutil.NewEmbedFS(app.embedFS, ExamplesDir)
		if err != nil {
			return "", "", err
		}
		name := app.config.Example
		if !fileutil.HasExt(name, script.Ext) {
			name += script.Ext
		}
		s, err := script.NewLoaderFS(fsys, script.WithEncoding(enc)).Load(name)
		if err != nil {
			return "", "", fmt.Errorf("unknown example %q: %w", app.config.Example, err)
		}
		return s.Content, s.FileName, nil

	default:
		return app.config.Script, "<inline>", nil
	}
}

// vmOptions 設定からVMのオプションを組み立てる
func (app *Application) vmOptions() []vm.Option {
	opts := []vm.Option{
		vm.WithRegistry(app.registry),
		vm.WithTimeLimit(app.config.Timeout),
		vm.WithLogger(app.log),
		vm.WithMetrics(app.collector),
		vm.WithDiagnostics(logger.GetDiagnostics()),
	}
	if app.config.HasSeed {
		r := rand.New(rand.NewPCG(app.config.Seed, app.config.Seed))
		opts = append(opts, vm.WithRandom(r.Float64))
	}
	return opts
}

// Examples 埋め込まれたサンプルスクリプトを読み込む
func (app *Application) Examples() ([]script.Script, error) {
	fsys, err := fileutil.NewEmbedFS(app.embedFS, ExamplesDir)
	if err != nil {
		return nil, err
	}
	return script.NewLoaderFS(fsys).LoadAll()
}

// listExamples 埋め込みサンプルの名前と説明（先頭のコメント行）を表示
func (app *Application) listExamples() error {
	scripts, err := app.Examples()
	if err != nil {
		return fmt.Errorf("failed to load examples: %w", err)
	}
	for _, s := range scripts {
		name := strings.TrimSuffix(s.FileName, path.Ext(s.FileName))
		fmt.Fprintf(app.stdout, "%-12s %s\n", name, describe(s.Content))
	}
	return nil
}

// printVariables 実行後の変数を名前順に name=value 形式で出力
func (app *Application) printVariables(vars *vm.Variables) {
	for _, name := range vars.Names() {
		fmt.Fprintf(app.stdout, "%s=%s\n", name, formatResult(vars.Value(name)))
	}
}

// describe スクリプト先頭のコメント行を説明として返す
func describe(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	if !strings.HasPrefix(line, "#") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "#"))
}

// formatResult 結果を最短の表現で文字列化
func formatResult(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// truncate 文字列を指定長で切り詰める
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
