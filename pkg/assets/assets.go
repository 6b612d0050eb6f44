// Package assets writes the generated files the stack needs next to the
// compose descriptor: Dockerfiles, operator scripts, the legacy compose
// shim and the optional Telegram bot scaffold.
//
// Templates are embedded in the binary and rendered with text/template;
// a missing template variable is a build-time defect surfaced as an
// error, never silently empty output. Generated files are overwritten on
// every run: the tool, not the disk, is the source of truth for them.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates
var templates embed.FS

// Data is the rendering context shared by all asset templates.
type Data struct {
	BaseDir       string
	Timezone      string
	DockerGroupID int
	BackupKeep    int
	HealthURL     string
}

// Asset describes one generated file.
type Asset struct {
	Template string
	Target   string // relative to the base dir unless absolute
	Mode     os.FileMode
	BotOnly  bool
}

// Catalog lists every asset the setup writes. ShimDir receives the
// docker-compose shim; everything else lands in the installation dir.
func Catalog(shimDir string) []Asset {
	return []Asset{
		{Template: "templates/Dockerfile.tmpl", Target: "Dockerfile", Mode: 0o644},
		{Template: "templates/Dockerfile.tools.tmpl", Target: "Dockerfile.tools", Mode: 0o644},
		{Template: "templates/backup.sh.tmpl", Target: "backup.sh", Mode: 0o755},
		{Template: "templates/update.sh.tmpl", Target: "update.sh", Mode: 0o755},
		{Template: "templates/docker-compose-shim.sh.tmpl", Target: filepath.Join(shimDir, "docker-compose"), Mode: 0o755},
		{Template: "templates/bot/Dockerfile.tmpl", Target: filepath.Join("bot", "Dockerfile"), Mode: 0o644, BotOnly: true},
		{Template: "templates/bot/bot.py.tmpl", Target: filepath.Join("bot", "bot.py"), Mode: 0o644, BotOnly: true},
	}
}

// Render produces the content of a single asset.
func Render(name string, data Data) ([]byte, error) {
	raw, err := templates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	tmpl, err := template.New(filepath.Base(name)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Write renders and writes the catalog. Bot assets are only written when
// includeBot is set. Returns the paths written.
func Write(baseDir, shimDir string, data Data, includeBot bool) ([]string, error) {
	var written []string
	for _, a := range Catalog(shimDir) {
		if a.BotOnly && !includeBot {
			continue
		}

		content, err := Render(a.Template, data)
		if err != nil {
			return written, err
		}

		target := a.Target
		if !filepath.IsAbs(target) {
			target = filepath.Join(baseDir, target)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("create dir for %s: %w", target, err)
		}
		if err := os.WriteFile(target, content, a.Mode); err != nil {
			return written, fmt.Errorf("write asset %s: %w", target, err)
		}
		// WriteFile does not change the mode of a pre-existing file.
		if err := os.Chmod(target, a.Mode); err != nil {
			return written, fmt.Errorf("chmod asset %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}
