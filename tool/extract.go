// Package tool drives extension packaging over the local filesystem:
// extracting compiled packages into editable projects and building
// packages back from them.
package tool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/gmextkit/gexpack/pkg/gexfile"
)

// Extract unpacks a compiled package: every payload lands in outDir under
// its sanitized logical name, and the metadata is saved next to them as
// an editable project. Source hints are rewritten to the extracted names
// so the project can be rebuilt in place. Returns the project file path.
func Extract(gexPath, outDir string) (string, error) {
	in, err := os.Open(gexPath)
	if err != nil {
		return "", fmt.Errorf("open package: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := gexfile.New()
	used := make(map[string]bool)
	sink := func(name, source string) (io.WriteCloser, string, error) {
		name = uniqueName(used, SanitizeFileName(name, "file.bin"))
		log.Debug("extracting payload", "name", name, "source", source)
		out, err := os.Create(filepath.Join(outDir, name))
		if err != nil {
			return nil, "", err
		}
		return out, name, nil
	}
	if err := f.LoadPackage(in, sink); err != nil {
		return "", fmt.Errorf("load %s: %w", gexPath, err)
	}

	proto := f.Package.Proto
	projPath := filepath.Join(outDir, SanitizeFileName(proto.Name, "extension")+".ged")
	out, err := os.Create(projPath)
	if err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}
	defer out.Close()
	if err := f.SaveProject(out, false); err != nil {
		return "", fmt.Errorf("save project: %w", err)
	}

	log.Info("extracted package",
		"extension", proto.Name,
		"files", len(proto.Contents),
		"project", projPath)
	return projPath, nil
}
