package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/minepkg/prelaunch/internals/commands"
	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/spf13/cobra"
)

func init() {
	runner := &libsRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "libs [version]",
		Short: "Lists the libraries of a prepared version",
		Long: `Lists the libraries a prepared version requires on this system and whether they are downloaded.
With --orphans all jars that are not referenced by any local version are listed instead.`,
		Example: `
  prelaunch libs fabric-loader-0.14.21-1.20.1
  prelaunch libs --orphans`,
		Args: cobra.MaximumNArgs(1),
	}, runner)
	cmd.Flags().BoolVar(&runner.orphans, "orphans", false, "list jars no local version references")

	rootCmd.AddCommand(cmd.Command)
}

type libsRunner struct {
	orphans bool
}

func (r *libsRunner) RunE(cmd *cobra.Command, args []string) error {
	l, err := newLauncher()
	if err != nil {
		return err
	}

	if r.orphans {
		descriptors, err := l.LocalDescriptors()
		if err != nil {
			return err
		}
		orphans, err := l.OrphanedLibraries(descriptors...)
		if err != nil {
			return err
		}
		size := int64(0)
		for _, o := range orphans {
			fmt.Println(o.Path)
			size += o.Size
		}
		logger.Infof(
			"%s orphaned jars (%s) across %d local versions",
			utils.HumanInteger(len(orphans)), humanize.Bytes(uint64(size)), len(descriptors),
		)
		return nil
	}

	if len(args) == 0 {
		return &commands.CliError{
			Text:        "no version given",
			Suggestions: []string{"Pass a prepared version id or use --orphans"},
		}
	}

	m, err := l.Loader.ResolveBase(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	table := &table{}
	table.addColumn("Library", 60)
	table.addColumn("Status", 10)
	missing := 0
	for _, lib := range l.Libraries(m) {
		name := lib.Name
		if lib.Native {
			name += gchalk.Gray(" (natives)")
		}
		status := gchalk.Green("ok")
		if !lib.Present {
			status = gchalk.Red("missing")
			missing++
		}
		table.addRow(name, status)
	}
	fmt.Print(table.render())

	if missing > 0 {
		return &commands.CliError{
			Text:        fmt.Sprintf("%d libraries are missing", missing),
			Suggestions: []string{fmt.Sprintf("Run `prelaunch prepare %s`", m.MinecraftVersion())},
		}
	}
	return nil
}
