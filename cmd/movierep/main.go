package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/John-Robertt/movierep/internal/app/run"
	"github.com/John-Robertt/movierep/internal/config"
	"github.com/John-Robertt/movierep/internal/domain"
	"github.com/John-Robertt/movierep/internal/export/xlsx"
	"github.com/John-Robertt/movierep/internal/infra/fsx"
)

// env 收拢 CLI 与进程环境的交互点，测试可以直接构造。
type env struct {
	stdout, stderr       io.Writer
	stdoutTTY, stderrTTY bool
	cwd                  string
}

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runMain(ctx, os.Args[1:], env{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdoutTTY: isTTY(os.Stdout),
		stderrTTY: isTTY(os.Stderr),
		cwd:       cwd,
	})
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

func runMain(ctx context.Context, args []string, e env) int {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(e.stdout)
		return 0
	}

	switch args[0] {
	case cmdReport, cmdSummary:
		return reportCmd(ctx, args[0], args[1:], e)
	default:
		fmt.Fprintf(e.stderr, "未知命令：%q\n\n", args[0])
		printUsage(e.stderr)
		return 2
	}
}

const (
	cmdReport  = "report"
	cmdSummary = "summary"
)

func reportCmd(ctx context.Context, cmd string, args []string, e env) int {
	for _, a := range args {
		if isHelp(a) {
			printUsage(e.stdout)
			return 0
		}
	}

	ca, err := parseArgs(cmd, args)
	if err != nil {
		fmt.Fprintf(e.stderr, "参数错误：%v\n\n", err)
		printUsage(e.stderr)
		return 2
	}

	logger := newLogger(e.stderr, ca.Verbose || e.stderrTTY)
	defer func() { _ = logger.Sync() }()

	eff, err := config.LoadEffective(e.cwd, config.CLIArgs{
		Path:         ca.Path,
		Schema:       ca.Schema,
		SchemaSet:    ca.SchemaSet,
		LikeScale:    ca.LikeScale,
		LikeScaleSet: ca.LikeScaleSet,
		TopK:         ca.TopK,
		TopKSet:      ca.TopKSet,
	})
	if err != nil {
		emitReport(e, ca, reportForConfigError(e.cwd, err))
		return 1
	}

	rr := run.ExecuteWithObserver(ctx, eff, ca.request(), newLogObserver(logger))

	if ca.Out != "" {
		if err := writeOut(absFrom(e.cwd, ca.Out), rr); err != nil {
			logger.Error("写入报告失败", zap.String("out", ca.Out), zap.Error(err))
			rr.Failed(domain.ErrCodeIOFailed, fmt.Sprintf("写入 %s 失败：%v", ca.Out, err))
			rr.Finalize()
			emitReport(e, ca, rr)
			return 1
		}
	}

	emitReport(e, ca, rr)
	if rr.Status == domain.StatusFailed {
		return 1
	}
	return 0
}

type cliArgs struct {
	Cmd  string
	Path string

	Schema    string
	SchemaSet bool

	LikeScale    int
	LikeScaleSet bool

	TopK    int
	TopKSet bool

	Year  domain.Opt[int]
	Genre domain.Opt[string]
	Votes domain.Opt[int]

	Out     string
	JSON    bool
	Verbose bool
}

func (ca cliArgs) request() run.Request {
	return run.Request{
		Summary:   ca.Cmd == cmdSummary,
		Year:      ca.Year,
		Genre:     ca.Genre,
		VotesYear: ca.Votes,
	}
}

// parseArgs 解析子命令参数；值参数同时支持 "--x v" 与 "--x=v"。
func parseArgs(cmd string, args []string) (cliArgs, error) {
	ca := cliArgs{Cmd: cmd}

	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			if ca.Path != "" {
				return cliArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ca.Path, a)
			}
			ca.Path = a
			continue
		}

		name, val, hasVal := strings.Cut(a, "=")
		value := func() (string, error) {
			if hasVal {
				return val, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s 需要一个值", name)
			}
			i++
			return args[i], nil
		}

		switch name {
		case "-r", "--year", "-v", "--votes":
			v, err := value()
			if err != nil {
				return cliArgs{}, err
			}
			y, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return cliArgs{}, fmt.Errorf("%s 必须是整数年份，实际是 %q", name, v)
			}
			if name == "-r" || name == "--year" {
				ca.Year = domain.Some(y)
			} else {
				ca.Votes = domain.Some(y)
			}
		case "-g", "--genre":
			v, err := value()
			if err != nil {
				return cliArgs{}, err
			}
			if v == "" {
				return cliArgs{}, fmt.Errorf("%s 不能为空", name)
			}
			ca.Genre = domain.Some(v)
		case "--schema":
			v, err := value()
			if err != nil {
				return cliArgs{}, err
			}
			ca.Schema, ca.SchemaSet = v, true
		case "--top-k", "--like-scale":
			v, err := value()
			if err != nil {
				return cliArgs{}, err
			}
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return cliArgs{}, fmt.Errorf("%s 必须是整数，实际是 %q", name, v)
			}
			if name == "--top-k" {
				ca.TopK, ca.TopKSet = n, true
			} else {
				ca.LikeScale, ca.LikeScaleSet = n, true
			}
		case "--out":
			v, err := value()
			if err != nil {
				return cliArgs{}, err
			}
			switch strings.ToLower(filepath.Ext(v)) {
			case ".json", ".xlsx":
			default:
				return cliArgs{}, fmt.Errorf("--out 只支持 .json 或 .xlsx，实际是 %q", v)
			}
			ca.Out = v
		case "--json", "--verbose":
			if hasVal {
				return cliArgs{}, fmt.Errorf("%s 不接受值", name)
			}
			if name == "--json" {
				ca.JSON = true
			} else {
				ca.Verbose = true
			}
		default:
			return cliArgs{}, fmt.Errorf("未知参数 %q", a)
		}
	}

	queries := ca.Year.Known() || ca.Genre.Known() || ca.Votes.Known()
	switch cmd {
	case cmdReport:
		if !queries {
			return cliArgs{}, fmt.Errorf("report 至少需要 -r/-g/-v 之一")
		}
	case cmdSummary:
		if queries {
			return cliArgs{}, fmt.Errorf("summary 不接受 -r/-g/-v")
		}
	}
	return ca, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  movierep report  [path] [-r YEAR] [-g GENRE] [-v YEAR] [选项]
  movierep summary [path] [选项]

命令：
  report   按年份/类型/票数生成报表（至少一个 -r/-g/-v）
  summary  输出记录总数与平均评分

参数：
  path                数据文件（.csv/.html/.htm）或目录；未指定则依次读 MOVIES_CSV_PATH、movierep.json、./movies_dataset.csv
  -r, --year YEAR     年份报表：最高/最低评分与平均片长
  -g, --genre GENRE   类型报表：数量与平均评分（精确匹配，大小写敏感）
  -v, --votes YEAR    票数报表：该年份票数 top 列表与 like 权重

选项：
  --schema imdb|simple  数据集列契约（默认 imdb）
  --top-k N             票数报表条目上限（默认 10）
  --like-scale N        like 权重缩放常数（默认 80）
  --out FILE            额外写出报告：.json 或 .xlsx
  --json                stdout 输出 RunReport JSON（stdout 非 TTY 时默认如此）
  --verbose             在 stderr 输出阶段日志
  -h, --help            显示帮助
`)
}

// emitReport：stdout 是 TTY 且未指定 --json 时输出文本报表；否则 stdout 只输出一个 RunReport JSON。
// 摘要与错误一律走 stderr。
func emitReport(e env, ca cliArgs, rr domain.RunReport) {
	if e.stdoutTTY && !ca.JSON {
		if rr.Status != domain.StatusFailed {
			renderText(e.stdout, rr)
		}
	} else {
		enc := json.NewEncoder(e.stdout)
		_ = enc.Encode(rr)
	}

	if rr.Status == domain.StatusFailed {
		fmt.Fprintf(e.stderr, "失败：%s：%s\n", rr.ErrorCode, rr.ErrorMsg)
		return
	}
	if !e.stdoutTTY || ca.JSON {
		fmt.Fprintf(e.stderr, "完成：records=%d ok=%d no_data=%d\n", rr.Records, rr.Summary.OK, rr.Summary.NoData)
	}
}

func reportForConfigError(cwd string, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Path:       absFrom(cwd, "."),
		StartedAt:  now,
		FinishedAt: now,
	}
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	rr.Failed(code, err.Error())
	rr.Finalize()
	return rr
}

// writeOut 按扩展名编码并原子写入。
func writeOut(path string, rr domain.RunReport) error {
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		b, err = xlsx.Encode(rr)
	default:
		b, err = json.MarshalIndent(rr, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomicReplace(path, b)
}

func absFrom(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
