package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig はYAML設定ファイルの内容を保持する
// 省略された項目はnilのまま
type FileConfig struct {
	Timeout   *int               `yaml:"timeout"` // ミリ秒
	LogLevel  *string            `yaml:"log_level"`
	Encoding  *string            `yaml:"encoding"`
	Libraries []string           `yaml:"libraries"`
	Variables map[string]float64 `yaml:"variables"`
	Seed      *uint64            `yaml:"seed"`
	Metrics   *bool              `yaml:"metrics"`
}

// LoadFile YAML設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// apply 設定ファイルの値をConfigに反映する（setに含まれるフラグは上書きしない）
func (fc *FileConfig) apply(config *Config, set map[string]bool) {
	if fc.LogLevel != nil && !set["log-level"] && !set["l"] {
		config.LogLevel = *fc.LogLevel
	}
	if fc.Encoding != nil && !set["encoding"] {
		config.Encoding = *fc.Encoding
	}
	if fc.Seed != nil && !set["seed"] {
		config.Seed = *fc.Seed
		config.HasSeed = true
	}
	if fc.Metrics != nil && !set["metrics"] {
		config.Metrics = *fc.Metrics
	}

	// ライブラリは設定ファイルの分を先に読み込む
	config.Libraries = append(append([]string(nil), fc.Libraries...), config.Libraries...)

	// --set で指定された変数が優先
	for name, value := range fc.Variables {
		if _, ok := config.Variables[name]; !ok {
			config.Variables[name] = value
		}
	}
}
