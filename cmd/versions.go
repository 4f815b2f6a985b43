package cmd

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/jwalton/gchalk"
	"github.com/manifoldco/promptui"
	"github.com/minepkg/prelaunch/internals/commands"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/spf13/cobra"
)

func init() {
	runner := &versionsRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "versions",
		Short: "Lists available minecraft versions",
		Example: `
  prelaunch versions --snapshots --limit 5
  prelaunch args $(prelaunch versions --pick)`,
		Args: cobra.NoArgs,
	}, runner)
	cmd.Flags().BoolVar(&runner.snapshots, "snapshots", false, "include snapshots")
	cmd.Flags().BoolVar(&runner.old, "old", false, "include old alpha & beta versions")
	cmd.Flags().IntVar(&runner.limit, "limit", 20, "maximum number of versions (0 lists all)")
	cmd.Flags().BoolVar(&runner.pick, "pick", false, "interactively select a version and print its id")

	loaders := commands.New(&cobra.Command{
		Use:   "loaders [minecraft version]",
		Short: "Lists fabric loader versions for a minecraft version",
		Args:  cobra.MaximumNArgs(1),
	}, &loadersRunner{})
	cmd.AddCommand(loaders.Command)

	rootCmd.AddCommand(cmd.Command)
}

type versionsRunner struct {
	snapshots bool
	old       bool
	limit     int
	pick      bool
}

func (v *versionsRunner) filter(catalog *minecraft.VersionCatalog) []minecraft.Release {
	releases := []minecraft.Release{}
	for _, r := range catalog.Versions {
		switch r.Type {
		case minecraft.TypeSnapshot:
			if !v.snapshots {
				continue
			}
		case minecraft.TypeOldAlpha, minecraft.TypeOldBeta:
			if !v.old {
				continue
			}
		}
		releases = append(releases, r)
		if v.limit > 0 && len(releases) == v.limit {
			break
		}
	}
	return releases
}

func (v *versionsRunner) RunE(cmd *cobra.Command, args []string) error {
	l, err := newLauncher()
	if err != nil {
		return err
	}
	catalog, err := l.Loader.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	releases := v.filter(catalog)

	if v.pick {
		if nonInteractive() {
			return fmt.Errorf("--pick can not be used in non interactive mode")
		}
		ids := make([]string, len(releases))
		for i, r := range releases {
			ids[i] = r.ID
		}
		fmt.Println(utils.SelectPrompt(&promptui.Select{
			Label:  "Minecraft version",
			Items:  ids,
			Size:   10,
			Stdout: os.Stderr,
		}))
		return nil
	}

	table := &table{}
	table.addColumn("Version", 24)
	table.addColumn("Type", 12)
	table.addColumn("Released", 12)
	for _, r := range releases {
		id := r.ID
		switch id {
		case catalog.Latest.Release, catalog.Latest.Snapshot:
			id = gchalk.Bold(id) + gchalk.Green(" *")
		}
		released := r.ReleaseTime
		if len(released) >= 10 {
			released = released[:10]
		}
		table.addRow(id, r.Type, released)
	}
	fmt.Print(table.render())
	return nil
}

type loadersRunner struct{}

func (r *loadersRunner) RunE(cmd *cobra.Command, args []string) error {
	l, err := newLauncher()
	if err != nil {
		return err
	}

	version := "latest"
	if len(args) > 0 {
		version = args[0]
	}
	if version == "latest" {
		catalog, err := l.Loader.Catalog(cmd.Context())
		if err != nil {
			return err
		}
		version = catalog.Latest.Release
	}

	entries, err := l.Loader.LoaderVersions(cmd.Context(), version)
	if err != nil {
		return err
	}

	fmt.Printf("Fabric loaders for Minecraft %s\n\n", version)
	table := &table{}
	table.addColumn("Loader", 24)
	table.addColumn("Channel", 12)
	for _, e := range entries {
		channel := "stable"
		if !e.Loader.Stable {
			channel = gchalk.Gray("unstable")
		}
		name := e.Loader.Version
		if sv, err := semver.NewVersion(name); err == nil && sv.Prerelease() != "" {
			name = fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch()) + gchalk.Gray("-"+sv.Prerelease())
		}
		table.addRow(name, channel)
	}
	fmt.Print(table.render())
	return nil
}
