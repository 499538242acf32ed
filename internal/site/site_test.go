// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felipegalind0/dashboard/internal/sizeinject"

	"go.astrophena.name/base/testutil"
	"go.astrophena.name/base/txtar"

	"github.com/fsnotify/fsnotify"
)

func extractTestSite(t *testing.T) (srcDir string) {
	t.Helper()
	srcDir = t.TempDir()
	tca, err := txtar.ParseFile(filepath.Join("testdata", "site.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	testutil.ExtractTxtar(t, tca, srcDir)
	return srcDir
}

func TestBuild(t *testing.T) {
	srcDir, dstDir := extractTestSite(t), t.TempDir()

	if err := Build(&Config{
		Src:         srcDir,
		Dst:         dstDir,
		feedCreated: time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatal(err)
	}

	index, err := os.ReadFile(filepath.Join(dstDir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	// The built page carries the placeholder; injectsize consumes it later.
	if !bytes.Contains(index, []byte(sizeinject.Token)) {
		t.Errorf("index.html doesn't contain the size placeholder:\n%s", index)
	}
	// The Polycam gallery is rendered from the manifest.
	if !bytes.Contains(index, []byte("Kitchen")) {
		t.Errorf("index.html doesn't contain the Polycam capture:\n%s", index)
	}

	robots, err := os.ReadFile(filepath.Join(dstDir, "robots.txt"))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, string(robots), robotsTxt)

	if _, err := os.Stat(filepath.Join(dstDir, "feed.xml")); err != nil {
		t.Errorf("feed.xml wasn't built: %v", err)
	}

	// CSS is copied under a content-hashed name.
	hashed, err := filepath.Glob(filepath.Join(dstDir, "css", "grid-*.css"))
	if err != nil {
		t.Fatal(err)
	}
	if len(hashed) != 1 {
		t.Errorf("want exactly one hashed grid.css, got %v", hashed)
	}

	// Polycam media keeps its plain name: the manifest refers to it by
	// fixed path.
	if _, err := os.Stat(filepath.Join(dstDir, "polycam", "test.mp4")); err != nil {
		t.Errorf("polycam media was renamed or dropped: %v", err)
	}
}

func TestBuildWithoutManifest(t *testing.T) {
	srcDir, dstDir := extractTestSite(t), t.TempDir()
	if err := os.RemoveAll(filepath.Join(srcDir, "data")); err != nil {
		t.Fatal(err)
	}

	// A missing manifest means an empty gallery, not a failed build.
	if err := Build(&Config{Src: srcDir, Dst: dstDir}); err != nil {
		t.Fatal(err)
	}

	index, err := os.ReadFile(filepath.Join(dstDir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(index, []byte("Kitchen")) {
		t.Errorf("index.html contains gallery entries from nowhere:\n%s", index)
	}
}

func TestBuildSkipFeed(t *testing.T) {
	srcDir, dstDir := extractTestSite(t), t.TempDir()

	if err := Build(&Config{Src: srcDir, Dst: dstDir, SkipFeed: true}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dstDir, "feed.xml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("feed.xml was built despite SkipFeed: %v", err)
	}
}

func TestStripComments(t *testing.T) {
	b := newBuildContext(&Config{})
	tpl := template.Must(template.New("test").Funcs(b.funcs).Parse(`{{ content . }}`))

	const content = `<!-- prettier-ignore-start -->
{
  "title": "Foo",
  "template": "layout",
  "permalink": "/"
}
<!-- prettier-ignore-end -->

Foo.

<!-- Some comment. -->
<!-- LOL. -->
`

	const strippedContent = "<p>Foo.</p>"

	p := &Page{path: "foo.md"}
	if err := p.parse(strings.NewReader(content)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.build(b, tpl, &buf); err != nil {
		t.Fatal(err)
	}

	// Don't care about whitespace.
	got := strings.TrimSpace(buf.String())
	testutil.AssertEqual(t, got, strippedContent)
}

func TestPage(t *testing.T) {
	cases := map[string]struct {
		name, content string
		wantErr       error
		wantType      string
	}{
		"valid frontmatter": {
			name: "foo.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "/"
}

Foo.
`,
		},
		"no frontmatter": {
			name:    "bar.md",
			content: "Hello, world!",
			wantErr: errFrontmatterMissing,
		},
		"invalid frontmatter (missing title)": {
			name: "invalid.md",
			content: `{
  "template": "layout",
  "permalink": "/"
}

Bar.
`,
			wantErr: errFrontmatterMissingParam,
		},
		"unsupported format": {
			name:    "unsupported.rst",
			content: "Sample text.",
			wantErr: errFormatUnsupported,
		},
		"invalid permalink": {
			name: "permalink.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "dwd/"
}

Test.
`,
			wantErr: errPermalinkInvalid,
		},
		"default type": {
			name: "default-type.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "/"
}

Test.
`,
			wantType: "page",
		},
		"custom type": {
			name: "custom-type.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "/",
  "type": "post"
}

Test.
`,
			wantType: "post",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := &Page{path: tc.name}
			err := p.parse(strings.NewReader(tc.content))
			if err != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}
			if err == nil && tc.wantErr != nil {
				t.Fatalf("want error %v, got nil", tc.wantErr)
			}
			if tc.wantType != "" && p.Type != tc.wantType {
				t.Fatalf("want type %q, got %q", tc.wantType, p.Type)
			}
		})
	}
}

func TestServe(t *testing.T) {
	// Find a free port for us.
	port, err := getFreePort()
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	addr := fmt.Sprintf("localhost:%d", port)

	var wg sync.WaitGroup

	ready := make(chan struct{})
	serveReadyHook = func() {
		ready <- struct{}{}
	}
	errCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())

	srcDir, dstDir := extractTestSite(t), t.TempDir()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := Serve(ctx, &Config{
			Src: srcDir,
			Dst: dstDir,
		}, addr); err != nil {
			errCh <- err
		}
	}()

	// Wait until the server is ready.
	select {
	case err := <-errCh:
		t.Fatalf("Test server crashed during startup or runtime: %v", err)
	case <-ready:
	}

	// Make some HTTP requests.
	urls := []struct {
		url        string
		wantStatus int
	}{
		{url: "/", wantStatus: http.StatusOK},
		{url: "/robots.txt", wantStatus: http.StatusOK},
		{url: "/does-not-exist", wantStatus: http.StatusNotFound},
		{url: "/polycam/", wantStatus: http.StatusNotFound},
	}

	for _, u := range urls {
		req, err := http.Get("http://" + addr + u.url)
		if err != nil {
			t.Fatal(err)
		}
		if req.StatusCode != u.wantStatus {
			t.Fatalf("GET %s: want status code %d, got %d", u.url, u.wantStatus, req.StatusCode)
		}
	}

	// Try to gracefully shutdown the server.
	cancel()
	// Wait until the server shuts down.
	wg.Wait()
	// See if the server failed to shutdown.
	select {
	case err := <-errCh:
		t.Fatalf("Test server crashed during shutdown: %v", err)
	default:
	}
}

// getFreePort asks the kernel for a free open port that is ready to use.
// Copied from
// https://github.com/phayes/freeport/blob/74d24b5ae9f58fbe4057614465b11352f71cdbea/freeport.go.
func getFreePort() (port int, err error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func TestShouldRebuild(t *testing.T) {
	cases := map[string]struct {
		path string
		op   fsnotify.Op
		want bool
	}{
		"macOS garbage":   {".DS_Store", fsnotify.Create, false},
		"vim temp file":   {"lololol/4913", fsnotify.Write, false},
		"vim backup file": {"pages/hello.md~", fsnotify.Create, false},
		"file creation":   {"pages/hello.md", fsnotify.Create, true},
		"file removal":    {"pages/hello.md", fsnotify.Remove, true},
		"file write":      {"pages/hello.md", fsnotify.Write, true},
		"ignore chmod":    {"pages/hello.md", fsnotify.Chmod, false},
		"ignore rename":   {"pages/hello.md", fsnotify.Rename, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := shouldRebuild(tc.path, tc.op)
			if got != tc.want {
				t.Fatalf("shouldRebuild(%q, %+v): want %v, got %v", tc.path, tc.op, tc.want, got)
			}
		})
	}
}

func TestFormatStaticName(t *testing.T) {
	cases := map[string]struct {
		filename, hash, want string
	}{
		"with extension":    {"css/main.css", "abc", "css/main-abc.css"},
		"without extension": {"main", "abc", "main-abc"},
		"blank filename":    {"", "abc", ""},
		"blank hash":        {"main.css", "", "main.css"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, formatStaticName(tc.filename, tc.hash), tc.want)
		})
	}
}
