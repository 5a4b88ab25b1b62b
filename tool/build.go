package tool

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/flate"

	"github.com/gmextkit/gexpack/pkg/gexfile"
)

// BuildOptions tunes a package build.
type BuildOptions struct {
	// Level is the zlib level for payload blocks; zero means best
	// compression.
	Level int
	// Optimize elides metadata fields the runtime recovers from
	// defaults.
	Optimize bool
}

// Build compiles an editable project into a package. Payloads are
// resolved from each entry's source hint, relative to the project
// directory when not found as given.
func Build(projectPath, gexPath string, opts BuildOptions) error {
	in, err := os.Open(projectPath)
	if err != nil {
		return fmt.Errorf("open project: %w", err)
	}
	defer in.Close()

	f := gexfile.New()
	if err := f.LoadProject(in); err != nil {
		return fmt.Errorf("load %s: %w", projectPath, err)
	}
	if opts.Level != 0 {
		f.Level = opts.Level
	} else {
		f.Level = flate.BestCompression
	}

	proto := f.Package.Proto
	if proto.TempFolder == "" {
		proto.TempFolder = TempFolderName()
	}
	f.Package.KeySeed = rand.Int31n(1 << 24)

	dir := filepath.Dir(projectPath)
	resolve := func(name, source string) (io.ReadCloser, string, error) {
		for _, candidate := range payloadCandidates(dir, source) {
			src, err := os.Open(candidate)
			if err == nil {
				log.Debug("packing payload", "name", name, "from", candidate)
				return src, source, nil
			}
		}
		log.Warn("payload not found, writing empty block", "name", name, "source", source)
		return nil, source, nil
	}

	out, err := os.Create(gexPath)
	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	defer out.Close()
	if err := f.SavePackage(out, resolve, opts.Optimize); err != nil {
		return fmt.Errorf("save %s: %w", gexPath, err)
	}

	log.Info("built package",
		"extension", proto.Name,
		"files", len(proto.Contents),
		"output", gexPath)
	return nil
}

// payloadCandidates lists the paths a source hint may resolve to, most
// specific first.
func payloadCandidates(dir, source string) []string {
	if source == "" {
		return nil
	}
	normalized := filepath.FromSlash(strings.ReplaceAll(source, `\`, "/"))
	candidates := []string{normalized}
	if !filepath.IsAbs(normalized) {
		candidates = append(candidates, filepath.Join(dir, normalized))
	}
	if base := fileNamePart(source); base != "" && base != normalized {
		candidates = append(candidates, filepath.Join(dir, base))
	}
	return candidates
}
