// Package setup sequences the reconciliation run: preflight, backup,
// merge, render and service lifecycle against the external runtime.
package setup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/n8nkit/n8nctl/internal/config"
	"github.com/n8nkit/n8nctl/pkg/backup"
	"github.com/n8nkit/n8nctl/pkg/cli/format"
	"github.com/n8nkit/n8nctl/pkg/envfile"
	"github.com/n8nkit/n8nctl/pkg/log"
	"github.com/n8nkit/n8nctl/pkg/runner"
)

// Status classifies a stage outcome. The driver loop, not the stages,
// decides what each status means for the rest of the run.
type Status int

const (
	// Ok lets the run continue.
	Ok Status = iota
	// Warning is reported and the run continues.
	Warning
	// Fatal aborts the run immediately.
	Fatal
)

// Result is the tagged outcome of one stage.
type Result struct {
	Status Status
	Detail string
	Err    error
}

func ok(format string, a ...interface{}) Result {
	return Result{Status: Ok, Detail: fmt.Sprintf(format, a...)}
}

func warning(err error, format string, a ...interface{}) Result {
	return Result{Status: Warning, Detail: fmt.Sprintf(format, a...), Err: err}
}

func fatal(err error, format string, a ...interface{}) Result {
	return Result{Status: Fatal, Detail: fmt.Sprintf(format, a...), Err: err}
}

// Stage is one step of the pipeline.
type Stage struct {
	Name string
	Run  func(ctx context.Context) Result
}

// PreconditionError marks an operator-fixable environment problem found
// before any mutation.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// Options are the per-run choices from the command line.
type Options struct {
	Domain       string
	Timezone     string
	AcmeEmail    string
	BotToken     string
	IncludeTools bool
	IncludeBot   bool
	ProxyTLS     bool
	DryRun       bool
}

// composeRuntime is the slice of the compose runner the driver needs.
type composeRuntime interface {
	BinaryAvailable() bool
	Down(ctx context.Context) error
	Build(ctx context.Context) error
	Up(ctx context.Context) error
}

// Driver owns one reconciliation run.
type Driver struct {
	cfg    *config.Config
	opts   Options
	logger log.Logger
	out    io.Writer
	comp   composeRuntime

	// RunID tags the log stream and the snapshot metadata.
	RunID string

	// resolved during MergeConfig, consumed by RenderDescriptor
	domain   string
	timezone string

	// run state feeding the summary
	results  []stageResult
	report   envfile.Report
	snapshot *backup.Snapshot
	written  []string
	healthOK bool

	// seams for tests
	geteuid    func() int
	pingDaemon func(context.Context) error
	httpGet    func(url string) (int, error)
	sleep      func(time.Duration)
	now        func() time.Time
}

type stageResult struct {
	name   string
	result Result
}

// New creates a Driver for one run.
func New(cfg *config.Config, opts Options, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.GetDefaultLogger().WithComponent("setup")
	}
	d := &Driver{
		cfg:    cfg,
		opts:   opts,
		logger: logger,
		out:    os.Stdout,
		comp:   runner.NewComposeRunner(cfg.Paths.BaseDir, logger),
		RunID:  uuid.NewString(),

		geteuid: os.Geteuid,
		pingDaemon: func(ctx context.Context) error {
			return runner.PingDaemon(ctx, cfg.Docker.FallbackAPIVersion, logger)
		},
		httpGet: func(url string) (int, error) {
			resp, err := http.Get(url)
			if err != nil {
				return 0, err
			}
			defer resp.Body.Close()
			return resp.StatusCode, nil
		},
		sleep: time.Sleep,
		now:   time.Now,
	}
	return d
}

// SetOutput redirects user-facing status lines, mainly for tests.
func (d *Driver) SetOutput(w io.Writer) { d.out = w }

// Stages returns the pipeline for this run. Dry-run stops after the
// preflight check and mutates nothing.
func (d *Driver) Stages() []Stage {
	stages := []Stage{
		{Name: "preflight check", Run: d.stagePreflight},
	}
	if d.opts.DryRun {
		return stages
	}
	return append(stages,
		Stage{Name: "backup", Run: d.stageBackup},
		Stage{Name: "stop services", Run: d.stageStopServices},
		Stage{Name: "ensure directories", Run: d.stageEnsureDirectories},
		Stage{Name: "write static assets", Run: d.stageWriteAssets},
		Stage{Name: "merge configuration", Run: d.stageMergeConfig},
		Stage{Name: "render descriptor", Run: d.stageRenderDescriptor},
		Stage{Name: "build images", Run: d.stageBuildImages},
		Stage{Name: "start services", Run: d.stageStartServices},
		Stage{Name: "verify health", Run: d.stageVerify},
	)
}

// Execute runs the pipeline. A Fatal result aborts and is returned as the
// run error; Warnings are reported and the run continues to the summary.
func (d *Driver) Execute(ctx context.Context) error {
	d.logger.Info("starting setup run", log.Str("run_id", d.RunID), log.Bool("dry_run", d.opts.DryRun))

	for _, stage := range d.Stages() {
		res := stage.Run(ctx)
		d.results = append(d.results, stageResult{name: stage.Name, result: res})
		d.printStatus(stage.Name, res)

		if res.Status == Fatal {
			d.logger.Error("stage failed", log.Str("stage", stage.Name), log.Err(res.Err))
			// Dry-run is a report, not a gate: the failure is printed
			// above but the process still exits zero.
			if d.opts.DryRun {
				return nil
			}
			if res.Err != nil {
				return res.Err
			}
			return fmt.Errorf("%s failed", stage.Name)
		}
	}

	if !d.opts.DryRun {
		d.printSummary()
	}
	return nil
}

func (d *Driver) printStatus(name string, res Result) {
	switch res.Status {
	case Ok:
		fmt.Fprintf(d.out, "%s %s: %s\n", format.StatusSymbol(true), name, res.Detail)
	case Warning:
		fmt.Fprintf(d.out, "%s %s: %s\n", format.WarnSymbol(), name, format.Warning("%s", res.Detail))
	case Fatal:
		fmt.Fprintf(d.out, "%s %s: %s\n", format.StatusSymbol(false), name, format.Error("%s", res.Detail))
	}
}
