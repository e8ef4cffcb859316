package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeDiscPNG writes a size x size PNG with an opaque disc in the middle.
func writeDiscPNG(t *testing.T, path string, size int, radius float64) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			if dx*dx+dy*dy <= radius*radius {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 180, B: 160, A: 255})
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestDetectJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disc.png")
	writeDiscPNG(t, path, 100, 35)

	out, errOut, code := runCLI(t, "detect", "--json", "--size", "0", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	var cf contourFile
	if err := json.Unmarshal([]byte(out), &cf); err != nil {
		t.Fatalf("output is not a contour file: %v\n%s", err, out)
	}
	if cf.Image != "disc.png" || cf.Width != 100 || cf.Height != 100 {
		t.Errorf("contour file = %+v", cf)
	}
	if cf.Source != "traced" {
		t.Errorf("source = %q, want traced", cf.Source)
	}
	if len(cf.Points) < 4 {
		t.Errorf("got %d points, want a polygon", len(cf.Points))
	}
}

func TestDetectTextAndOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disc.png")
	writeDiscPNG(t, path, 64, 20)
	overlays := filepath.Join(dir, "overlays")

	out, errOut, code := runCLI(t, "detect", "--size", "128", "--overlay", overlays, path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "disc.png: ") || !strings.Contains(out, "(traced)") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(overlays, "disc.png")); err != nil {
		t.Errorf("overlay not written: %v", err)
	}
}

func TestDetectErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disc.png")
	writeDiscPNG(t, path, 32, 10)
	bogus := filepath.Join(dir, "bogus.png")
	if err := os.WriteFile(bogus, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"detect"}},
		{"threshold", []string{"detect", "--threshold", "300", path}},
		{"step", []string{"detect", "--step", "0", path}},
		{"missing file", []string{"detect", filepath.Join(dir, "nope.png")}},
		{"undecodable", []string{"detect", bogus}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, code := runCLI(t, tt.args...); code == 0 {
				t.Error("expected a non-zero exit")
			}
		})
	}
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "disc.png")
	writeDiscPNG(t, img, 128, 50)

	opts := defaultDetectOptions()
	opts.size = 128
	cfg, err := opts.contourConfig()
	if err != nil {
		t.Fatal(err)
	}
	cf, err := opts.detectFile(img, cfg)
	if err != nil {
		t.Fatal(err)
	}
	contour := contourPath(img)
	if err := writeContourFile(contour, cf); err != nil {
		t.Fatal(err)
	}

	script := filepath.Join(dir, "script.json")
	if err := os.WriteFile(script, []byte(`{"steps": [
		{"action": "tap", "label": "center", "x": 400, "y": 300},
		{"action": "tap", "label": "corner", "x": 5, "y": 5}
	]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, errOut, code := runCLI(t, "replay", contour, script)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q, want 2 lines", out)
	}
	if !strings.HasSuffix(lines[0], "hit disc.png") {
		t.Errorf("center tap = %q, want a hit", lines[0])
	}
	if !strings.HasSuffix(lines[1], "miss") {
		t.Errorf("corner tap = %q, want a miss", lines[1])
	}
}

func TestReadContourFileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.contour.json")
	if err := os.WriteFile(path, []byte(`{"image":"a.png","points":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readContourFile(path); err == nil {
		t.Error("expected an error for a contour without points")
	}
}

func TestPathHelpers(t *testing.T) {
	tests := []struct {
		path    string
		source  bool
		contour string
	}{
		{"sprites/page.png", true, "sprites/page.contour.json"},
		{"sprites/Page.PNG", true, "sprites/Page.contour.json"},
		{"sprites/page.webp", true, "sprites/page.contour.json"},
		{"sprites/page.contour.json", false, "sprites/page.contour.contour.json"},
		{"notes.txt", false, "notes.contour.json"},
	}
	for _, tt := range tests {
		if got := isSourceImage(tt.path); got != tt.source {
			t.Errorf("isSourceImage(%q) = %v, want %v", tt.path, got, tt.source)
		}
		if got := contourPath(tt.path); got != filepath.FromSlash(tt.contour) {
			t.Errorf("contourPath(%q) = %q, want %q", tt.path, got, tt.contour)
		}
	}
}

func TestContourWatcher(t *testing.T) {
	dir := t.TempDir()
	staging := t.TempDir()

	// An image present before the watch starts.
	writeDiscPNG(t, filepath.Join(dir, "existing.png"), 48, 15)

	opts := defaultDetectOptions()
	opts.size = 64
	cfg, err := opts.contourConfig()
	if err != nil {
		t.Fatal(err)
	}
	cw, err := newContourWatcher(dir, &opts, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer cw.Close()
	cw.debounce = 20 * time.Millisecond
	written := make(chan string, 4)
	cw.onWritten = func(path string) { written <- path }

	if err := cw.processDir(dir); err != nil {
		t.Fatal(err)
	}
	if got := <-written; got != filepath.Join(dir, "existing.contour.json") {
		t.Errorf("processDir wrote %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cw.Run(ctx) }()

	// Move a finished file in so the watcher never sees a partial write.
	src := filepath.Join(staging, "fresh.png")
	writeDiscPNG(t, src, 48, 15)
	if err := os.Rename(src, filepath.Join(dir, "fresh.png")); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-written:
		want := filepath.Join(dir, "fresh.contour.json")
		if got != want {
			t.Errorf("watcher wrote %q, want %q", got, want)
		}
		cf, err := readContourFile(got)
		if err != nil {
			t.Fatal(err)
		}
		if cf.Image != "fresh.png" || cf.Width != 64 {
			t.Errorf("contour file = %+v", cf)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no contour written for the new image")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}
