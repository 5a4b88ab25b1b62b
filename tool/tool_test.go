package tool

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/gmextkit/gexpack/pkg/extension"
	"github.com/gmextkit/gexpack/pkg/gexfile"
)

var testBlobs = map[string][]byte{
	"manual.chm":  []byte("pretend this is compiled help"),
	"sockets.dll": bytes.Repeat([]byte{0x4D, 0x5A, 0x90, 0x00}, 300),
	"readme.txt":  []byte("read me"),
}

// writeTestPackage composes a package with three payloads into path.
func writeTestPackage(t *testing.T, path string) {
	t.Helper()
	f := gexfile.New()
	f.Package.KeySeed = 3328
	proto := f.Package.Proto
	proto.Name = "sockets"
	proto.TempFolder = "temp042"
	proto.HelpFile = `C:\ext\manual.chm`

	lib := proto.AddContent(extension.KindLibrary)
	lib.Entry().Name = "sockets.dll"
	lib.Entry().Source = `C:\ext\sockets.dll`

	bin := proto.AddContent(extension.KindBinary)
	bin.Entry().Name = "readme.txt"
	bin.Entry().Source = "readme.txt"

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create package: %v", err)
	}
	defer out.Close()
	resolve := func(name, source string) (io.ReadCloser, string, error) {
		return io.NopCloser(bytes.NewReader(testBlobs[name])), source, nil
	}
	if err := f.SavePackage(out, resolve, false); err != nil {
		t.Fatalf("save package: %v", err)
	}
}

func TestExtractBuildRoundTrip(t *testing.T) {
	dir := t.TempDir()
	gexPath := filepath.Join(dir, "sockets.gex")
	writeTestPackage(t, gexPath)

	outDir := filepath.Join(dir, "extracted")
	projPath, err := Extract(gexPath, outDir)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if filepath.Base(projPath) != "sockets.ged" {
		t.Errorf("project file %q, want sockets.ged", projPath)
	}
	for name, want := range testBlobs {
		got, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("read extracted %s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("extracted %s bytes mismatch", name)
		}
	}

	rebuiltPath := filepath.Join(dir, "rebuilt.gex")
	if err := Build(projPath, rebuiltPath, BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}

	in, err := os.Open(rebuiltPath)
	if err != nil {
		t.Fatalf("open rebuilt: %v", err)
	}
	defer in.Close()
	f := gexfile.New()
	got := make(map[string][]byte)
	sink := func(name, source string) (io.WriteCloser, string, error) {
		buf := &bytes.Buffer{}
		return collectCloser{buf, func() { got[name] = append([]byte(nil), buf.Bytes()...) }}, source, nil
	}
	if err := f.LoadPackage(in, sink); err != nil {
		t.Fatalf("load rebuilt: %v", err)
	}
	if f.Package.Proto.Name != "sockets" {
		t.Errorf("rebuilt extension name %q", f.Package.Proto.Name)
	}
	for name, want := range testBlobs {
		if !bytes.Equal(got[name], want) {
			t.Errorf("rebuilt payload %s mismatch", name)
		}
	}
}

type collectCloser struct {
	io.Writer
	done func()
}

func (c collectCloser) Close() error {
	c.done()
	return nil
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"manual.chm", "manual.chm"},
		{`..\..\evil.dll`, "....evil.dll"},
		{`con:trol?`, "control"},
		{"", "fallback"},
		{"..", "fallback"},
		{"  spaced  ", "spaced"},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in, "fallback"); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniqueName(t *testing.T) {
	used := make(map[string]bool)
	if got := uniqueName(used, "a.dll"); got != "a.dll" {
		t.Errorf("first: %q", got)
	}
	if got := uniqueName(used, "a.dll"); got != "a_2.dll" {
		t.Errorf("second: %q", got)
	}
	if got := uniqueName(used, "a.dll"); got != "a_3.dll" {
		t.Errorf("third: %q", got)
	}
}

func TestTempFolderName(t *testing.T) {
	pattern := regexp.MustCompile(`^temp\d{3}$`)
	for i := 0; i < 32; i++ {
		if name := TempFolderName(); !pattern.MatchString(name) {
			t.Fatalf("TempFolderName() = %q", name)
		}
	}
}
