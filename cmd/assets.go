package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/minepkg/prelaunch/internals/artifacts"
	"github.com/minepkg/prelaunch/internals/assets"
	"github.com/minepkg/prelaunch/internals/commands"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/spf13/cobra"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Verify and repair the local asset store",
}

func init() {
	verify := commands.New(&cobra.Command{
		Use:     "verify <index>",
		Short:   "Checks every object of a (downloaded) asset index",
		Example: "  prelaunch assets verify 5",
		Args:    cobra.ExactArgs(1),
	}, &assetsVerifyRunner{})

	repairRunner := &assetsRepairRunner{}
	repair := commands.New(&cobra.Command{
		Use:   "repair <index>",
		Short: "Downloads all missing or broken objects of an asset index",
		Args:  cobra.ExactArgs(1),
	}, repairRunner)
	repair.Flags().BoolVarP(&repairRunner.yes, "yes", "y", false, "do not ask for confirmation")

	materialize := commands.New(&cobra.Command{
		Use:   "materialize <index>",
		Short: "Copies the objects of a legacy asset index into a plain file tree",
		Args:  cobra.ExactArgs(1),
	}, &assetsMaterializeRunner{})

	orphans := commands.New(&cobra.Command{
		Use:   "orphans",
		Short: "Lists objects that are not referenced by any local asset index",
		Args:  cobra.NoArgs,
	}, &assetsOrphansRunner{})

	assetsCmd.AddCommand(verify.Command, repair.Command, materialize.Command, orphans.Command)
	rootCmd.AddCommand(assetsCmd)
}

// localIndex reads an already downloaded asset index
func localIndex(ctx context.Context, id string) (*assets.Store, *minecraft.AssetIndex, error) {
	l, err := newLauncher()
	if err != nil {
		return nil, nil, err
	}
	store := l.Assets
	store.Download = l.Download
	store.Logger = logger

	index, err := store.LoadIndex(ctx, minecraft.AssetIndexRef{ID: id})
	if err != nil {
		return nil, nil, &commands.CliError{
			Text:        fmt.Sprintf("asset index %q is not downloaded", id),
			Suggestions: []string{"Run `prelaunch prepare <version>` first"},
			Err:         err,
		}
	}
	return store, index, nil
}

type assetsVerifyRunner struct{}

func (a *assetsVerifyRunner) RunE(cmd *cobra.Command, args []string) error {
	store, index, err := localIndex(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	report := store.VerifyIndex(index)
	printIndexReport(report)
	if !report.OK() {
		return &commands.CliError{
			Text:        fmt.Sprintf("%d asset objects are missing or broken", len(report.Broken())),
			Suggestions: []string{fmt.Sprintf("Run `prelaunch assets repair %s`", args[0])},
		}
	}
	return nil
}

func printIndexReport(report *assets.IndexReport) {
	fmt.Println(commands.KeyValue("Valid", humanize.Comma(int64(len(report.Valid)))))
	fmt.Println(commands.KeyValue("Invalid", humanize.Comma(int64(len(report.Invalid)))))
	fmt.Println(commands.KeyValue("Missing", humanize.Comma(int64(len(report.Missing)))))
	for _, obj := range report.Invalid {
		logger.Debugf("invalid: %s (%s)", obj.Name, obj.Hash)
	}
}

type assetsRepairRunner struct {
	yes bool
}

func (a *assetsRepairRunner) RunE(cmd *cobra.Command, args []string) error {
	store, index, err := localIndex(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	task := logger.NewTask(2)
	task.Step("🔎", "Verifying asset objects")
	report := store.VerifyIndex(index)
	broken := report.Broken()
	if len(broken) == 0 {
		fmt.Println("All asset objects are fine.")
		return nil
	}

	size := int64(0)
	for _, obj := range broken {
		size += obj.Size
	}
	fmt.Printf("%d objects (%s) need to be downloaded.\n", len(broken), humanize.Bytes(uint64(size)))

	if !a.yes && !nonInteractive() {
		input := confirmation.New("Repair them now?", confirmation.Yes)
		ok, err := input.RunPrompt()
		if !ok || err != nil {
			logger.Info("Aborting")
			return nil
		}
	}

	task.Step("📥", "Downloading broken objects")
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ui := newProgressUI(cancel)
	store.OnProgress = ui.Notifier()
	ui.Start()
	repaired, err := store.Repair(ctx, broken)
	ui.Stop()
	if err != nil {
		return err
	}

	fmt.Println(commands.KeyValue("Repaired", humanize.Comma(int64(len(repaired.Repaired)))))
	if n := len(repaired.StillMissing); n > 0 {
		return &commands.CliError{Text: fmt.Sprintf("%d asset objects could not be downloaded", n)}
	}
	return nil
}

type assetsMaterializeRunner struct{}

func (a *assetsMaterializeRunner) RunE(cmd *cobra.Command, args []string) error {
	store, index, err := localIndex(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !index.IsLegacy() {
		fmt.Printf("Asset index %s is not a legacy index, nothing to do.\n", args[0])
		return nil
	}

	report, err := store.MaterializeVirtual(index)
	if err != nil {
		return err
	}
	fmt.Println(commands.KeyValue("Copied", humanize.Comma(int64(report.Copied))))
	fmt.Println(commands.KeyValue("Existing", humanize.Comma(int64(report.Existing))))
	if report.Missing > 0 {
		fmt.Println(commands.KeyValue("Missing", commands.StyleWarn.Render(humanize.Comma(int64(report.Missing)))))
	}
	return nil
}

type assetsOrphansRunner struct{}

func (a *assetsOrphansRunner) RunE(cmd *cobra.Command, args []string) error {
	l, err := newLauncher()
	if err != nil {
		return err
	}
	store := l.Assets

	indexes := []*minecraft.AssetIndex{}
	files := artifacts.New(filepath.Join(store.Dir, "indexes"), artifacts.WithExtension(".json"))
	err = files.Walk(func(e artifacts.Entry) error {
		id := strings.TrimSuffix(filepath.Base(e.Path), ".json")
		index, err := store.LoadIndex(cmd.Context(), minecraft.AssetIndexRef{ID: id})
		if err != nil {
			logger.Warnf("Skipping unreadable asset index %s: %s", id, err)
			return nil
		}
		indexes = append(indexes, index)
		return nil
	})
	if err != nil {
		return err
	}
	if len(indexes) == 0 {
		return &commands.CliError{Text: "no asset indexes found", Help: "Without an index every object would be reported."}
	}

	orphans, err := store.Orphans(indexes...)
	if err != nil {
		return err
	}
	size := int64(0)
	for _, o := range orphans {
		fmt.Fprintln(os.Stdout, o.Path)
		size += o.Size
	}
	logger.Infof("%d orphaned objects (%s)", len(orphans), humanize.Bytes(uint64(size)))
	return nil
}
