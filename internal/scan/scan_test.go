package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanDatasets_SupportedExtOnly(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "imdb", "movies.csv"))
	touch(t, filepath.Join(root, "imdb", "notes.txt"))
	touch(t, filepath.Join(root, "web", "top.HTML"))
	touch(t, filepath.Join(root, "web", "old.htm"))

	got, err := ScanDatasets(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{
		filepath.Join("imdb", "movies.csv"),
		filepath.Join("web", "old.htm"),
		filepath.Join("web", "top.HTML"),
	}
	if len(got) != len(want) {
		t.Fatalf("期望 %d 个数据文件，实际 %d", len(want), len(got))
	}
	for i := range want {
		if got[i].RelPath != want[i] {
			t.Fatalf("第 %d 个：期望 rel=%q，实际=%q", i, want[i], got[i].RelPath)
		}
		if !filepath.IsAbs(got[i].AbsPath) {
			t.Fatalf("期望绝对路径，实际=%q", got[i].AbsPath)
		}
	}
	if got[2].Ext != ".html" {
		t.Fatalf("期望 ext=.html，实际=%q", got[2].Ext)
	}
	if got[0].Size != 1 {
		t.Fatalf("期望 size=1，实际=%d", got[0].Size)
	}
}

func TestScanDatasets_ExcludeDirsFromConfig(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "archive", "2019.csv"))
	touch(t, filepath.Join(root, "current", "2024.csv"))
	touch(t, filepath.Join(root, "current", "drafts", "x.csv"))

	got, err := ScanDatasets(root, []string{"archive", " ", filepath.Join(root, "current", "drafts")})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个数据文件，实际 %d", len(got))
	}
	wantRel := filepath.Join("current", "2024.csv")
	if got[0].RelPath != wantRel {
		t.Fatalf("期望 rel=%q，实际=%q", wantRel, got[0].RelPath)
	}
}

func TestScanDatasets_SkipHiddenDirs(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, ".git", "objects.csv"))
	touch(t, filepath.Join(root, "movies.csv"))

	got, err := ScanDatasets(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 || got[0].RelPath != "movies.csv" {
		t.Fatalf("期望只有 movies.csv，实际=%v", got)
	}
}

func TestScanDatasets_EmptyDir(t *testing.T) {
	got, err := ScanDatasets(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("期望空结果，实际 %d", len(got))
	}
}

func TestScanDatasets_MissingRoot(t *testing.T) {
	_, err := ScanDatasets(filepath.Join(t.TempDir(), "nope"), nil)
	if err == nil {
		t.Fatalf("期望错误")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
