package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/John-Robertt/movierep/internal/domain"
)

const sampleCSV = `id,titleType,originalTitle,startYear,runtimeMinutes,genres,rating,numVotes
tt01,movie,A,1999,120,"Drama,Romance",8.0,1000
tt02,movie,B,1999,\N,Comedy,6.0,900
tt03,short,C,2000,10,"Documentary,Short",9.9,\N
`

func TestParseArgs_ValueForms(t *testing.T) {
	ca, err := parseArgs(cmdReport, []string{"data.csv", "-r", "1999", "--genre=Sci=Fi", "-v=-5", "--schema", "simple", "--top-k=3", "--out", "r.XLSX", "--json"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ca.Path != "data.csv" {
		t.Fatalf("path 不符合预期：%q", ca.Path)
	}
	if ca.Year != domain.Some(1999) || ca.Votes != domain.Some(-5) || ca.Genre != domain.Some("Sci=Fi") {
		t.Fatalf("查询参数不符合预期：%+v", ca)
	}
	if !ca.SchemaSet || ca.Schema != "simple" || !ca.TopKSet || ca.TopK != 3 || ca.LikeScaleSet {
		t.Fatalf("配置参数不符合预期：%+v", ca)
	}
	if ca.Out != "r.XLSX" || !ca.JSON || ca.Verbose {
		t.Fatalf("输出参数不符合预期：%+v", ca)
	}

	req := ca.request()
	if req.Summary || req.Count() != 3 {
		t.Fatalf("请求不符合预期：%+v", req)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	cases := []struct {
		cmd  string
		args []string
		want string
	}{
		{cmdReport, nil, "至少需要"},
		{cmdReport, []string{"-r"}, "需要一个值"},
		{cmdReport, []string{"-r", "nineteen"}, "整数年份"},
		{cmdReport, []string{"-g", ""}, "不能为空"},
		{cmdReport, []string{"-r", "1", "--bogus"}, "未知参数"},
		{cmdReport, []string{"a", "b", "-r", "1"}, "重复的 path"},
		{cmdReport, []string{"-r", "1", "--out", "r.txt"}, ".json 或 .xlsx"},
		{cmdReport, []string{"-r", "1", "--json=yes"}, "不接受值"},
		{cmdReport, []string{"-r", "1", "--like-scale", "x"}, "必须是整数"},
		{cmdSummary, []string{"-g", "Drama"}, "不接受 -r/-g/-v"},
	}
	for _, tc := range cases {
		_, err := parseArgs(tc.cmd, tc.args)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s %v：期望包含 %q 的错误，实际 %v", tc.cmd, tc.args, tc.want, err)
		}
	}
}

type captured struct {
	stdout, stderr bytes.Buffer
}

func (c *captured) env(cwd string, tty bool) env {
	return env{stdout: &c.stdout, stderr: &c.stderr, stdoutTTY: tty, stderrTTY: false, cwd: cwd}
}

func clearMoviesEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MOVIES_CSV_PATH", "MOVIES_SCHEMA", "MOVIES_LIKE_SCALE", "MOVIES_TOP_K"} {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("清理环境变量失败：%v", err)
		}
	}
}

func writeSample(t *testing.T) string {
	t.Helper()
	cwd := t.TempDir()
	if err := os.WriteFile(filepath.Join(cwd, "movies_dataset.csv"), []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("写入数据失败：%v", err)
	}
	return cwd
}

func TestCLI_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	clearMoviesEnv(t)
	cwd := writeSample(t)

	var c captured
	code := runMain(context.Background(), []string{"report", "-r", "1999", "-g", "Western"}, c.env(cwd, false))
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, c.stderr.String())
	}

	var rr domain.RunReport
	if err := json.Unmarshal(c.stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, c.stdout.String())
	}
	if rr.Records != 3 || rr.Summary.OK != 1 || rr.Summary.NoData != 1 {
		t.Fatalf("RunReport 不符合预期：%+v", rr)
	}
	if !strings.Contains(c.stderr.String(), "完成：records=3") {
		t.Fatalf("stderr 缺少完成摘要：%q", c.stderr.String())
	}
}

func TestCLI_TTY_TextReport(t *testing.T) {
	clearMoviesEnv(t)
	cwd := writeSample(t)

	var c captured
	code := runMain(context.Background(), []string{"report", "-r", "1999", "-v", "1999"}, c.env(cwd, true))
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, c.stderr.String())
	}
	want := "Highest rating:8.0 - A\nLowest rating:6.0 - B\nAverage mean minutes: 120.0\n\nA\n" +
		strings.Repeat("😀", 77) + " 1000\nB\n" + strings.Repeat("😀", 70) + " 900\n"
	if c.stdout.String() != want {
		t.Fatalf("文本输出不符合预期：\ngot=%q\nwant=%q", c.stdout.String(), want)
	}
}

func TestCLI_Summary(t *testing.T) {
	clearMoviesEnv(t)
	cwd := writeSample(t)

	var c captured
	code := runMain(context.Background(), []string{"summary"}, c.env(cwd, true))
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d", code)
	}
	if c.stdout.String() != "Total movies: 3\nAverage rating: 7.97\n" {
		t.Fatalf("summary 输出不符合预期：%q", c.stdout.String())
	}
}

func TestCLI_ConfigError_ExitOne(t *testing.T) {
	clearMoviesEnv(t)
	cwd := t.TempDir()

	var c captured
	code := runMain(context.Background(), []string{"summary"}, c.env(cwd, false))
	if code != 1 {
		t.Fatalf("期望退出码 1，实际 %d", code)
	}
	var rr domain.RunReport
	if err := json.Unmarshal(c.stdout.Bytes(), &rr); err != nil {
		t.Fatalf("配置错误也必须输出 RunReport JSON：%v", err)
	}
	if rr.Status != domain.StatusFailed || rr.ErrorCode != domain.ErrCodeConfigMissingPath {
		t.Fatalf("期望 config_missing_path，实际 %+v", rr)
	}
	if !strings.Contains(c.stderr.String(), "失败：config_missing_path") {
		t.Fatalf("stderr 缺少失败信息：%q", c.stderr.String())
	}
}

func TestCLI_UsageErrors(t *testing.T) {
	var c captured
	if code := runMain(context.Background(), []string{"report"}, c.env(t.TempDir(), false)); code != 2 {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	if code := runMain(context.Background(), []string{"bogus"}, c.env(t.TempDir(), false)); code != 2 {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	if c.stdout.Len() != 0 {
		t.Fatalf("用法错误不应写 stdout：%q", c.stdout.String())
	}

	c = captured{}
	if code := runMain(context.Background(), []string{"report", "--help"}, c.env(t.TempDir(), false)); code != 0 {
		t.Fatalf("--help 期望退出码 0，实际 %d", code)
	}
	if !strings.Contains(c.stdout.String(), "movierep report") {
		t.Fatalf("帮助信息缺失：%q", c.stdout.String())
	}
}

func TestCLI_OutFiles(t *testing.T) {
	clearMoviesEnv(t)
	cwd := writeSample(t)

	var c captured
	code := runMain(context.Background(), []string{"report", "-g", "Drama", "--out", "out/r.json"}, c.env(cwd, true))
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, c.stderr.String())
	}
	b, err := os.ReadFile(filepath.Join(cwd, "out", "r.json"))
	if err != nil {
		t.Fatalf("读取 --out 文件失败：%v", err)
	}
	var rr domain.RunReport
	if err := json.Unmarshal(b, &rr); err != nil {
		t.Fatalf("--out JSON 无效：%v", err)
	}
	if len(rr.Reports) != 1 || rr.Reports[0].Genre == nil || rr.Reports[0].Genre.Count != 1 {
		t.Fatalf("--out 内容不符合预期：%+v", rr.Reports)
	}

	code = runMain(context.Background(), []string{"report", "-v", "1999", "--out", "r.xlsx"}, c.env(cwd, true))
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, c.stderr.String())
	}
	f, err := excelize.OpenFile(filepath.Join(cwd, "r.xlsx"))
	if err != nil {
		t.Fatalf("打开 xlsx 失败：%v", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[1] != domain.KindVotes {
		t.Fatalf("xlsx 表不符合预期：%v", sheets)
	}
}

func TestCLI_OutWriteFailure_ReportFailed(t *testing.T) {
	clearMoviesEnv(t)
	cwd := writeSample(t)
	// 目标是目录，原子替换必然失败。
	if err := os.MkdirAll(filepath.Join(cwd, "r.json"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	var c captured
	code := runMain(context.Background(), []string{"report", "-r", "1999", "--out", "r.json"}, c.env(cwd, false))
	if code != 1 {
		t.Fatalf("期望退出码 1，实际 %d", code)
	}

	var rr domain.RunReport
	if err := json.Unmarshal(c.stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, c.stdout.String())
	}
	if rr.Status != domain.StatusFailed || rr.ErrorCode != domain.ErrCodeIOFailed {
		t.Fatalf("期望 failed/io_failed，实际 status=%q code=%q", rr.Status, rr.ErrorCode)
	}
	if !strings.Contains(c.stderr.String(), "失败：io_failed") {
		t.Fatalf("stderr 缺少失败信息：%q", c.stderr.String())
	}
}
