package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/n8nkit/n8nctl/pkg/assets"
	"github.com/n8nkit/n8nctl/pkg/backup"
	"github.com/n8nkit/n8nctl/pkg/cli/format"
	"github.com/n8nkit/n8nctl/pkg/compose"
	"github.com/n8nkit/n8nctl/pkg/envfile"
	"github.com/n8nkit/n8nctl/pkg/log"
)

func (d *Driver) stagePreflight(ctx context.Context) Result {
	checks := []struct {
		reason string
		failed bool
	}{
		{"must run as root", d.geteuid() != 0},
		{fmt.Sprintf("base directory %s not found", d.cfg.Paths.BaseDir), !isDir(d.cfg.Paths.BaseDir)},
		{fmt.Sprintf("env file %s not found", d.cfg.Paths.EnvFile), !isFile(d.cfg.Paths.EnvFile)},
		{fmt.Sprintf("compose file %s not found", d.cfg.Paths.ComposeFile), !isFile(d.cfg.Paths.ComposeFile)},
		{"docker binary not found in PATH", !d.comp.BinaryAvailable()},
	}
	for _, c := range checks {
		if c.failed {
			err := &PreconditionError{Reason: c.reason}
			return fatal(err, "%s", c.reason)
		}
	}

	// Daemon reachability is informative here; an actually dead daemon
	// fails loudly at the build stage.
	if err := d.pingDaemon(ctx); err != nil {
		return warning(err, "docker daemon not reachable: %v", err)
	}
	return ok("environment looks sane")
}

func (d *Driver) stageBackup(_ context.Context) Result {
	entries := []backup.Entry{
		{Path: d.cfg.Paths.EnvFile, Class: backup.Mandatory},
		{Path: d.cfg.Paths.ComposeFile, Class: backup.Mandatory},
		{Path: filepath.Join(d.cfg.Paths.BaseDir, "Dockerfile"), Class: backup.Optional},
		{Path: filepath.Join(d.cfg.Paths.BaseDir, "Dockerfile.tools"), Class: backup.Optional},
		{Path: filepath.Join(d.cfg.Paths.BaseDir, "backup.sh"), Class: backup.Optional},
		{Path: filepath.Join(d.cfg.Paths.BaseDir, "update.sh"), Class: backup.Optional},
	}

	snap, err := backup.Take(d.cfg.Paths.BackupRoot, d.RunID, entries, d.now())
	if err != nil {
		return fatal(err, "backup failed: %v", err)
	}
	d.snapshot = snap

	if removed, err := backup.Rotate(d.cfg.Paths.BackupRoot, d.cfg.Backup.Keep); err != nil {
		return warning(err, "snapshot saved to %s, rotation failed: %v", snap.Dir, err)
	} else if len(removed) > 0 {
		d.logger.Info("rotated old snapshots", log.Int("removed", len(removed)))
	}
	return ok("snapshot saved to %s", snap.Dir)
}

func (d *Driver) stageStopServices(ctx context.Context) Result {
	if err := d.comp.Down(ctx); err != nil {
		return warning(err, "stop failed, assuming nothing was running")
	}
	return ok("services stopped")
}

func (d *Driver) stageEnsureDirectories(_ context.Context) Result {
	for _, dir := range []string{d.cfg.Paths.DataDir, d.cfg.Paths.FilesDir, d.cfg.Paths.BackupRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fatal(err, "create %s: %v", dir, err)
		}
	}
	return ok("directories in place")
}

func (d *Driver) stageWriteAssets(_ context.Context) Result {
	data := assets.Data{
		BaseDir:       d.cfg.Paths.BaseDir,
		Timezone:      d.resolveTimezoneEarly(),
		DockerGroupID: d.cfg.Docker.GroupID,
		BackupKeep:    d.cfg.Backup.Keep,
		HealthURL:     d.cfg.Health.URL,
	}
	written, err := assets.Write(d.cfg.Paths.BaseDir, d.cfg.Paths.ShimDir, data, d.opts.IncludeBot)
	if err != nil {
		return fatal(err, "write assets: %v", err)
	}
	d.written = written
	return ok("%d files written", len(written))
}

func (d *Driver) stageMergeConfig(_ context.Context) Result {
	env, err := envfile.Load(d.cfg.Paths.EnvFile)
	if err != nil {
		return fatal(err, "load env file: %v", err)
	}

	d.domain = resolve(d.opts.Domain, env, "DOMAIN", "")
	d.timezone = resolve(d.opts.Timezone, env, "GENERIC_TIMEZONE", d.cfg.Timezone)

	report, err := envfile.Merge(env, DesiredDefaults(d.domain, d.timezone, d.opts.AcmeEmail, d.opts.BotToken), mergeHeader)
	if err != nil {
		return fatal(err, "merge env defaults: %v", err)
	}
	d.report = report

	for _, c := range report {
		if c.Added {
			fmt.Fprintf(d.out, "  %s %s\n", format.Info("added"), c.Key)
		} else {
			fmt.Fprintf(d.out, "  %s  %s\n", format.Dim("kept"), c.Key)
		}
	}

	if report.Added() > 0 {
		if err := env.WriteAtomic(); err != nil {
			return fatal(err, "write env file: %v", err)
		}
	}
	return ok("%d keys added, %d kept", report.Added(), len(report)-report.Added())
}

func (d *Driver) stageRenderDescriptor(_ context.Context) Result {
	out, err := compose.Render(compose.Context{
		Domain:        d.domain,
		Timezone:      d.timezone,
		AcmeEmail:     d.opts.AcmeEmail,
		DockerGroupID: d.cfg.Docker.GroupID,
		IncludeTools:  d.opts.IncludeTools,
		IncludeBot:    d.opts.IncludeBot,
		ProxyTLS:      d.opts.ProxyTLS,
	})
	if err != nil {
		return fatal(err, "render descriptor: %v", err)
	}
	if err := writeFileAtomic(d.cfg.Paths.ComposeFile, out, 0o644); err != nil {
		return fatal(err, "write descriptor: %v", err)
	}
	return ok("descriptor written to %s", d.cfg.Paths.ComposeFile)
}

func (d *Driver) stageBuildImages(ctx context.Context) Result {
	if err := d.comp.Build(ctx); err != nil {
		return fatal(err, "image build failed: %v", err)
	}
	return ok("images built")
}

func (d *Driver) stageStartServices(ctx context.Context) Result {
	if err := d.comp.Up(ctx); err != nil {
		return fatal(err, "start failed: %v", err)
	}
	return ok("services started")
}

func (d *Driver) stageVerify(_ context.Context) Result {
	for attempt := 1; attempt <= d.cfg.Health.Attempts; attempt++ {
		code, err := d.httpGet(d.cfg.Health.URL)
		if err == nil && code == 200 {
			d.healthOK = true
			return ok("n8n answered the health check (attempt %d)", attempt)
		}
		if attempt < d.cfg.Health.Attempts {
			d.sleep(d.cfg.Health.Interval)
		}
	}
	return warning(nil, "health check did not pass after %d attempts", d.cfg.Health.Attempts)
}

// resolveTimezoneEarly is used by the asset stage, which runs before the
// env file has been read. Flag value wins; otherwise the existing file is
// consulted, falling back to the configured default.
func (d *Driver) resolveTimezoneEarly() string {
	if d.opts.Timezone != "" {
		return d.opts.Timezone
	}
	if env, err := envfile.Load(d.cfg.Paths.EnvFile); err == nil {
		if v, found := env.Get("GENERIC_TIMEZONE"); found && v != "" {
			return v
		}
	}
	return d.cfg.Timezone
}

func resolve(flagValue string, env *envfile.File, key, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if v, found := env.Get(key); found && v != "" {
		return v
	}
	return fallback
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
