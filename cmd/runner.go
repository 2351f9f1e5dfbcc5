package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytz/internal/extract"
	"github.com/desertthunder/ytz/internal/pipeline"
	"github.com/desertthunder/ytz/internal/shared"
	"github.com/desertthunder/ytz/internal/tag"
	"github.com/desertthunder/ytz/internal/transcode"
	"github.com/urfave/cli/v3"
)

// Pipeline defines the batch operations the CLI commands depend on.
type Pipeline interface {
	Process(ctx context.Context, ref string) pipeline.Result
	Run(ctx context.Context, refs []string, opts pipeline.BatchOpts) (*pipeline.Outcome, error)
}

// Expander resolves a playlist reference into ordered item references.
type Expander interface {
	ExpandPlaylist(ctx context.Context, ref string) []string
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	pipe     Pipeline
	expander Expander
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Pipeline and Expander may be injected for testing; when nil they are built
// from the config's tool paths.
type RunnerOpts struct {
	Config   *shared.Config
	Pipeline Pipeline
	Expander Expander
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Pipeline == nil || opts.Expander == nil {
		cfg := opts.Config
		ytdlp := extract.NewYTDLP(cfg.Tools.YTDLPPath, opts.Logger)
		processor := pipeline.NewProcessor(pipeline.ProcessorOpts{
			Extractor:  ytdlp,
			Transcoder: transcode.NewFFmpeg(cfg.Tools.FFmpegPath),
			Tags:       tag.NewWriter(),
			Art:        tag.NewArtFetcher(time.Duration(cfg.Downloads.ThumbnailTimeoutSeconds) * time.Second),
			ScratchDir: cfg.Downloads.ScratchDir,
			Logger:     opts.Logger,
		})
		if opts.Pipeline == nil {
			opts.Pipeline = processor
		}
		if opts.Expander == nil {
			opts.Expander = ytdlp
		}
	}

	return &Runner{
		config:   opts.Config,
		pipe:     opts.Pipeline,
		expander: opts.Expander,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, fetchCommand, expandCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Expand resolves a playlist reference and prints the item references.
func (r *Runner) Expand(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("url")
	if ref == "" {
		return fmt.Errorf("%w: playlist url argument is required", shared.ErrInvalidInput)
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	urls := r.expander.ExpandPlaylist(ctx, ref)
	if len(urls) == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEmptyPlaylist, ref)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string][]string{"urls": urls}, true)
	}

	for _, u := range urls {
		r.writePlain("%s\n", u)
	}
	return nil
}

// Setup writes a starter config file from the embedded example.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("Created %s - adjust tool paths before running\n", path)
	return nil
}
