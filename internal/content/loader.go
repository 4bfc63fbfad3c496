// Package content loads optional per-domain text and sample tables from a
// directory. Anything missing or unreadable falls back to the built-in
// domain data without reporting an error.
package content

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/empirical"
	"github.com/quimicai/surfacelab/internal/logger"
)

const (
	descriptionExt = ".md"
	samplesExt     = ".json"
)

type Loader struct {
	Dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Description returns the trimmed text of <dir>/<tag>.md, or "".
func (l *Loader) Description(tag string) string {
	data, ok := l.read(tag + descriptionExt)
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Samples decodes <dir>/<tag>.json. It returns nil when the file is missing,
// malformed or has no columns.
func (l *Loader) Samples(tag string) *empirical.SampleTable {
	data, ok := l.read(tag + samplesExt)
	if !ok {
		return nil
	}
	var table empirical.SampleTable
	if err := json.Unmarshal(data, &table); err != nil {
		logger.Debug("sample table ignored", "domain", tag, "error", err)
		return nil
	}
	if len(table.Variables) == 0 && len(table.Metrics) == 0 {
		logger.Debug("sample table ignored", "domain", tag, "reason", "empty")
		return nil
	}
	return &table
}

// Apply replaces every registered domain with a copy carrying the loaded
// content. It returns the tags that picked up at least one override.
func (l *Loader) Apply(reg *domain.Registry) []string {
	if l.Dir == "" {
		return nil
	}
	var applied []string
	for _, d := range reg.List() {
		desc := l.Description(d.Tag)
		samples := l.Samples(d.Tag)
		if desc == "" && samples == nil {
			continue
		}
		reg.Register(d.WithContent(desc, samples))
		applied = append(applied, d.Tag)
	}
	logger.Debug("content loaded", "dir", l.Dir, "domains", applied)
	return applied
}

func (l *Loader) read(name string) ([]byte, bool) {
	if l.Dir == "" {
		return nil, false
	}
	path := filepath.Join(l.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("content not loaded", "path", path, "error", err)
		return nil, false
	}
	return data, true
}
