package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/minepkg/prelaunch/internals/commands"
	"github.com/minepkg/prelaunch/internals/launcher"
	"github.com/minepkg/prelaunch/internals/patch"
	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	runner := &prepareRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "prepare [version]",
		Short: "Downloads and verifies everything needed to start a minecraft version",
		Long: `Resolves the version (and the fabric loader), removes libraries that conflict with the loader,
downloads all missing libraries, the client jar and assets and repairs broken asset objects.

The version defaults to the latest release.`,
		Example: `
  prelaunch prepare
  prelaunch prepare 1.20.1 --loader fabric
  prelaunch prepare 1.20.1 --report json`,
		Args: cobra.MaximumNArgs(1),
	}, runner)

	runner.flags.register(cmd.Flags())
	cmd.Flags().StringVar(&runner.report, "report", "", "print a machine readable report instead of the summary (json, yaml or toml)")

	rootCmd.AddCommand(cmd.Command)
}

// prepareFlags are shared by every command that prepares a version first
type prepareFlags struct {
	loader        string
	loaderVersion string
	skipAssets    bool
	patches       []string
}

func (f *prepareFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.loader, "loader", "l", "", "mod loader to use (\"fabric\")")
	flags.StringVar(&f.loaderVersion, "loader-version", "latest", "version of the mod loader")
	flags.BoolVar(&f.skipAssets, "skip-assets", false, "do not verify or download assets")
	flags.StringSliceVar(&f.patches, "patch", nil, "additional descriptor patches (file or url) applied during the run")
}

func (f *prepareFlags) request(args []string) launcher.Request {
	version := "latest"
	if len(args) > 0 {
		version = args[0]
	}
	return launcher.Request{
		Version:       version,
		Loader:        strings.ToLower(f.loader),
		LoaderVersion: f.loaderVersion,
		SkipAssets:    f.skipAssets,
	}
}

// prepare runs the pipeline with a progress view
func (f *prepareFlags) prepare(ctx context.Context, args []string) (*launcher.Launcher, *launcher.Result, error) {
	l, err := newLauncher()
	if err != nil {
		return nil, nil, err
	}

	for _, location := range f.patches {
		p, err := patch.FetchPatch(ctx, l.Download.Client, location)
		if err != nil {
			return nil, nil, fmt.Errorf("loading patch %s: %w", location, err)
		}
		l.Patches = append(l.Patches, p)
	}

	req := f.request(args)
	headline := "Preparing minecraft " + req.Version
	if req.Loader != "" {
		headline += " with " + req.Loader
	}
	logger.Headline(headline)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ui := newProgressUI(cancel)
	l.OnProgress = ui.Notifier()
	ui.Start()
	result, err := l.Prepare(ctx, req)
	ui.Stop()
	if err != nil {
		return nil, nil, err
	}

	if result.RestoreErr != nil {
		logger.Warn(commands.Render(commands.FromError(result.RestoreErr)))
	}
	return l, result, nil
}

type prepareRunner struct {
	flags  prepareFlags
	report string
}

func (p *prepareRunner) RunE(cmd *cobra.Command, args []string) error {
	if p.report != "" {
		if _, err := reportEncoder(p.report); err != nil {
			return err
		}
	}

	_, result, err := p.flags.prepare(cmd.Context(), args)
	if err != nil {
		return err
	}

	if p.report != "" {
		if err := writeReport(cmd.OutOrStdout(), result, p.report); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), summary(result))
	}

	if !result.Success {
		return notLaunchable(result)
	}
	return nil
}

func notLaunchable(result *launcher.Result) error {
	return &commands.CliError{
		Text: fmt.Sprintf("%s can not be started, required files are missing", result.VersionID),
		Suggestions: []string{
			"Check your internet connection and run the command again",
			"Configure additional library repositories with `prelaunch config set libraryRepositories <urls>`",
		},
	}
}

// summary renders the result for humans
func summary(result *launcher.Result) string {
	lines := []string{
		"",
		commands.StyleGrass.Render(commands.Emoji("⛏  ") + "Prepared " + result.VersionID),
		commands.KeyValue("Minecraft", utils.PrettyVersion(result.BaseID)),
		commands.KeyValue("Main class", result.Manifest.MainClass),
		commands.KeyValue("Libraries", fmt.Sprintf("%d ready", result.Downloaded)),
	}

	if result.Assets != nil {
		assets := fmt.Sprintf("%s objects", humanize.Comma(int64(result.Assets.Objects)))
		if size := result.Manifest.AssetIndex.TotalSize; size > 0 {
			assets += fmt.Sprintf(" (%s)", humanize.Bytes(uint64(size)))
		}
		if result.Assets.Repaired > 0 {
			assets += fmt.Sprintf(", %d repaired", result.Assets.Repaired)
		}
		lines = append(lines, commands.KeyValue("Assets "+result.Assets.Index, assets))
	}

	for _, c := range result.Conflicts {
		lines = append(lines, commands.KeyValue("Conflict", c.String()))
	}
	for _, f := range result.Failed {
		lines = append(lines, commands.KeyValue("Failed", commands.StyleWarn.Render(f.Target+": "+f.Error)))
	}
	if n := len(result.MissingLibraries); n > 0 {
		lines = append(lines, commands.KeyValue("Missing libraries", commands.StyleWarn.Render(strings.Join(result.MissingLibraries, ", "))))
	}
	if n := len(result.MissingAssets); n > 0 {
		lines = append(lines, commands.KeyValue("Missing assets", commands.StyleWarn.Render(fmt.Sprintf("%d objects", n))))
	}

	status := gchalk.Green("ready to launch")
	if !result.Success {
		status = gchalk.Red("not launchable")
	}
	lines = append(lines, commands.KeyValue("Status", status), commands.KeyValue("Took", result.Duration.Round(time.Millisecond).String()))
	return strings.Join(lines, "\n")
}
