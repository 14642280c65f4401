package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const roomScene = `
(settings :max-order 1)
(room :name "hall" :size (vec3 4 4 3))
(source (vec3 2 2 1.5))
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestParseConfig(t *testing.T) {
	ov, err := parseConfig(`
[trace]
max-order = 4
epsilon = 1e-6
traversal = breadth-first
roots = front
roots = top
`)
	if err != nil {
		t.Fatal(err)
	}
	if ov.MaxOrder == nil || *ov.MaxOrder != 4 {
		t.Errorf("max order = %v", ov.MaxOrder)
	}
	if ov.Epsilon == nil || *ov.Epsilon != 1e-6 {
		t.Errorf("epsilon = %v", ov.Epsilon)
	}
	if ov.Traversal != "breadth-first" {
		t.Errorf("traversal = %q", ov.Traversal)
	}
	if len(ov.Roots) != 2 || ov.Roots[1] != "top" {
		t.Errorf("roots = %v", ov.Roots)
	}
	if ov.NearDistance != nil || ov.MaxBeams != nil {
		t.Errorf("unset settings came back set: %+v", ov)
	}
}

func TestParseConfigZeroIsSet(t *testing.T) {
	ov, err := parseConfig("[trace]\nmax-order = 0\nmax-beams = 0\n")
	if err != nil {
		t.Fatal(err)
	}
	if ov.MaxOrder == nil || *ov.MaxOrder != 0 {
		t.Errorf("max order = %v, want 0", ov.MaxOrder)
	}
	if ov.MaxBeams == nil || *ov.MaxBeams != 0 {
		t.Errorf("max beams = %v, want 0", ov.MaxBeams)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []string{
		"[trace]\nmax-order = lots\n",
		"[trace]\ncolour = blue\n",
		"[render]\nmax-order = 1\n",
	}
	for _, body := range tests {
		if _, err := parseConfig(body); err == nil {
			t.Errorf("parseConfig(%q) succeeded", body)
		}
	}
}

func TestExampleConfigParses(t *testing.T) {
	ov, err := parseConfig(ExampleConfig)
	if err != nil {
		t.Fatal(err)
	}
	if ov.MaxOrder == nil || *ov.MaxOrder != 3 {
		t.Errorf("max order = %v, want 3", ov.MaxOrder)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "trace.cfg", "[trace]\nmax-beams = 50\n")
	t.Setenv(ConfigEnv, path)

	ov, got, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	if ov.MaxBeams == nil || *ov.MaxBeams != 50 {
		t.Errorf("max beams = %v", ov.MaxBeams)
	}
}

func TestLoadConfigNone(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	ov, path, err := loadConfig("")
	if err != nil || path != "" {
		t.Fatalf("loadConfig = %q, %v", path, err)
	}
	if ov.MaxOrder != nil || ov.Roots != nil {
		t.Errorf("expected empty overrides, got %+v", ov)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.cfg")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestRunSummary(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	scene := writeFile(t, t.TempDir(), "room.beam", roomScene)

	code, out, errOut := runCmd(t, "", scene)
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	for _, want := range []string{"faces     6 in 1 parts", "beams     2", "order 1 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRunJSONToStdout(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	code, out, errOut := runCmd(t, roomScene, "-o", "-", "-")
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	var decoded struct {
		Faces int `json:"faces"`
		Tree  struct {
			Stats struct {
				Beams int `json:"beams"`
			} `json:"stats"`
		} `json:"tree"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if decoded.Faces != 6 || decoded.Tree.Stats.Beams != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestRunJSONToFile(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	dir := t.TempDir()
	scene := writeFile(t, dir, "room.beam", roomScene)
	outPath := filepath.Join(dir, "tree.json")

	if code, _, errOut := runCmd(t, "", "-o", outPath, scene); code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Errorf("%s is not valid JSON", outPath)
	}
}

// failingClose accepts every write and fails on Close, like a file whose
// buffered data cannot be flushed.
type failingClose struct{ bytes.Buffer }

func (f *failingClose) Close() error { return errors.New("disk quota exceeded") }

func TestWriteResultReportsCloseError(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	out := &failingClose{}
	orig := createFile
	createFile = func(string) (io.WriteCloser, error) { return out, nil }
	defer func() { createFile = orig }()

	code, _, errOut := runCmd(t, roomScene, "-o", "tree.json", "-")
	if code != exitError {
		t.Errorf("exit %d, want %d", code, exitError)
	}
	if !strings.Contains(errOut, "disk quota exceeded") {
		t.Errorf("stderr does not report the close error:\n%s", errOut)
	}
	if !json.Valid(out.Bytes()) {
		t.Error("result was not written before the failed close")
	}
}

func TestWriteResultToDirectory(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	code, _, errOut := runCmd(t, roomScene, "-o", t.TempDir(), "-")
	if code != exitError || !strings.Contains(errOut, "writing result") {
		t.Errorf("exit %d, stderr:\n%s", code, errOut)
	}
}

// TestRunPrecedence checks that flags beat the config file, which beats
// the scene.
func TestRunPrecedence(t *testing.T) {
	dir := t.TempDir()
	scene := writeFile(t, dir, "room.beam", roomScene)
	cfg := writeFile(t, dir, "trace.cfg", "[trace]\nmax-order = 0\ntraversal = breadth-first\n")

	_, out, _ := runCmd(t, "", "-config", cfg, scene)
	if !strings.Contains(out, "beams     1") {
		t.Errorf("config max-order 0 not applied:\n%s", out)
	}

	_, out, _ = runCmd(t, "", "-config", cfg, "-max-order", "1", scene)
	if !strings.Contains(out, "beams     2") {
		t.Errorf("flag max-order 1 did not beat the config:\n%s", out)
	}
}

func TestRunAllRoots(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	code, out, errOut := runCmd(t, roomScene, "-roots", "all", "-max-order", "0", "-")
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "order 0 6") {
		t.Errorf("expected six cast beams:\n%s", out)
	}
}

func TestRunErrors(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no scene", nil, exitUsage},
		{"two scenes", []string{"a.beam", "b.beam"}, exitUsage},
		{"bad flag", []string{"-max-order", "x", "a.beam"}, exitUsage},
		{"missing scene", []string{filepath.Join(dir, "missing.beam")}, exitError},
		{"bad scene", []string{writeFile(t, dir, "bad.beam", `(room :size`)}, exitError},
		{"bad traversal", []string{"-traversal", "sideways", writeFile(t, dir, "ok.beam", roomScene)}, exitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCmd(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("exit %d, want %d", code, tt.code)
			}
		})
	}
}

func TestRunExampleConfig(t *testing.T) {
	code, out, _ := runCmd(t, "", "-example-config")
	if code != exitOK || !strings.HasPrefix(out, "[trace]") {
		t.Errorf("exit %d, output:\n%s", code, out)
	}
}
