package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/subosito/gotenv"

	"github.com/John-Robertt/movierep/internal/domain"
)

const (
	// ErrCodeInvalid 表示配置无法读取/解析，或字段不合法。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
	// ErrCodeMissingPath 表示 CLI/环境变量/配置文件都没有给出数据路径，且默认文件也不存在。
	ErrCodeMissingPath = domain.ErrCodeConfigMissingPath
	// ErrCodeDataNotFound 表示数据路径已给出但不存在。
	ErrCodeDataNotFound = domain.ErrCodeDataNotFound
)

const (
	// FileName 是 cwd 下的可选配置文件。
	FileName = "movierep.json"
	// DotEnvName 是 cwd 下的可选 .env 文件（不覆盖已存在的环境变量）。
	DotEnvName = ".env"
	// EnvPrefix 是环境变量前缀：MOVIES_CSV_PATH / MOVIES_SCHEMA / MOVIES_LIKE_SCALE / MOVIES_TOP_K。
	EnvPrefix = "MOVIES"
	// DefaultDataFile 是未指定路径时在 cwd 下查找的数据文件。
	DefaultDataFile = "movies_dataset.csv"

	DefaultSchema    = "imdb"
	DefaultLikeScale = 80
	DefaultTopK      = 10
)

// CLIArgs 是 CLI 暴露的配置项，并保留“是否显式指定”的信息，
// 保证 CLI 能覆盖环境变量与配置文件中的任何值。
type CLIArgs struct {
	Path string

	Schema    string
	SchemaSet bool

	LikeScale    int
	LikeScaleSet bool

	TopK    int
	TopKSet bool
}

// FileConfig 对应 movierep.json 的解析结构；指针字段区分“未写”与“写了零值”。
type FileConfig struct {
	DataPath    string   `json:"data_path"`
	Schema      string   `json:"schema"`
	LikeScale   *int     `json:"like_scale"`
	TopK        *int     `json:"top_k"`
	ExcludeDirs []string `json:"exclude_dirs"`
}

// EnvConfig 对应 MOVIES_* 环境变量。
type EnvConfig struct {
	CSVPath   string `envconfig:"CSV_PATH"`
	Schema    string `envconfig:"SCHEMA"`
	LikeScale *int   `envconfig:"LIKE_SCALE"`
	TopK      *int   `envconfig:"TOP_K"`
}

// EffectiveConfig 是合并并校验后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	DataPath string `validate:"required"`
	// DataIsDir 为 true 时 DataPath 是目录，需要扫描数据文件。
	DataIsDir bool

	Schema    string `validate:"oneof=imdb simple"`
	LikeScale int    `validate:"gte=1"`
	TopK      int    `validate:"gte=1,lte=1000"`

	ExcludeDirs []string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：未指定数据路径，且 %q 不存在", e.Code, e.Path)
	case ErrCodeDataNotFound:
		return fmt.Sprintf("%s：数据路径 %q 不存在", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadEffective 读取 .env / 环境变量 / movierep.json，并与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定，逐字段）：CLI > 环境变量 > movierep.json > 默认值。
// - 相对路径一律以 cwd 为基准
// - 数据路径都未给出时，使用 <cwd>/movies_dataset.csv（存在才算）
// - exclude_dirs 仅由配置文件控制
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if err := loadDotEnv(filepath.Join(cwdAbs, DotEnvName)); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: filepath.Join(cwdAbs, DotEnvName), Err: err}
	}

	var ec EnvConfig
	if err := envconfig.Process(EnvPrefix, &ec); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: EnvPrefix + "_*", Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return merge(cwdAbs, cli, ec, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, ec EnvConfig, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	eff := EffectiveConfig{
		Schema:    DefaultSchema,
		LikeScale: DefaultLikeScale,
		TopK:      DefaultTopK,
	}

	// data path：CLI > env > config > 默认文件
	switch {
	case strings.TrimSpace(cli.Path) != "":
		eff.DataPath = absCleanFrom(cwdAbs, cli.Path)
	case strings.TrimSpace(ec.CSVPath) != "":
		eff.DataPath = absCleanFrom(cwdAbs, ec.CSVPath)
	case strings.TrimSpace(fc.DataPath) != "":
		eff.DataPath = absCleanFrom(cwdAbs, fc.DataPath)
	default:
		def := filepath.Join(cwdAbs, DefaultDataFile)
		if _, err := os.Stat(def); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: def, Err: err}
		}
		eff.DataPath = def
	}

	switch {
	case cli.SchemaSet:
		eff.Schema = cli.Schema
	case strings.TrimSpace(ec.Schema) != "":
		eff.Schema = ec.Schema
	case strings.TrimSpace(fc.Schema) != "":
		eff.Schema = fc.Schema
	}
	eff.Schema = strings.ToLower(strings.TrimSpace(eff.Schema))

	eff.LikeScale = pickInt(eff.LikeScale, fc.LikeScale, ec.LikeScale, cli.LikeScale, cli.LikeScaleSet)
	eff.TopK = pickInt(eff.TopK, fc.TopK, ec.TopK, cli.TopK, cli.TopKSet)

	for _, x := range fc.ExcludeDirs {
		if x = strings.TrimSpace(x); x != "" {
			eff.ExcludeDirs = append(eff.ExcludeDirs, x)
		}
	}

	if err := validate.Struct(eff); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: describe(err)}
	}

	st, err := os.Stat(eff.DataPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeDataNotFound, Path: eff.DataPath, Err: err}
	}
	eff.DataIsDir = st.IsDir()
	return eff, nil
}

// pickInt 按 默认 < 配置文件 < 环境变量 < CLI 的顺序逐层覆盖。
func pickInt(def int, file, env *int, cli int, cliSet bool) int {
	v := def
	if file != nil {
		v = *file
	}
	if env != nil {
		v = *env
	}
	if cliSet {
		v = cli
	}
	return v
}

// describe 把 validator 的错误转成面向用户的字段说明。
func describe(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s 必须满足 %s=%s，实际是 %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s 必须满足 %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "；"))
}

// loadDotEnv 读取可选的 .env；不存在不算错误，已存在的环境变量不被覆盖。
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return gotenv.Load(path)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
