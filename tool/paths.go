package tool

import (
	"fmt"
	"math/rand"
	"strings"
)

// SanitizeFileName strips characters a file name cannot carry, path
// separators included. An empty result falls back to fallback.
func SanitizeFileName(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(`\/:*?"<>|`, r) {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.TrimSpace(b.String())
	if s == "" || s == "." || s == ".." {
		return fallback
	}
	return s
}

// fileNamePart extracts the file-name part of a source hint, which may
// use either path separator or a bare drive prefix.
func fileNamePart(p string) string {
	if i := strings.LastIndexAny(p, `\/:`); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// uniqueName reserves name in used, suffixing the stem until it is free.
func uniqueName(used map[string]bool, name string) string {
	if !used[name] {
		used[name] = true
		return name
	}
	ext := ""
	stem := name
	if i := strings.LastIndex(name, "."); i > 0 {
		stem, ext = name[:i], name[i:]
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// TempFolderName generates a random temp%03d working-folder name for
// prototypes that do not configure one.
func TempFolderName() string {
	return fmt.Sprintf("temp%03d", rand.Intn(1000))
}
