package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/minepkg/prelaunch/internals/commands"
	"github.com/minepkg/prelaunch/internals/launchcmd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	runner := &argsRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "args [version]",
		Short: "Prepares a version and prints the launch command",
		Long: `Prepares the version like "prepare" does, extracts the natives and prints the
arguments for the java executable. Nothing is started.`,
		Example: `
  prelaunch args 1.20.1 --loader fabric --player Steve
  prelaunch args --json | jq .jvmArgs`,
		Args: cobra.MaximumNArgs(1),
	}, runner)

	flags := cmd.Flags()
	runner.flags.register(flags)
	flags.String("player", "", "offline player name")
	flags.Int("ram", 0, "max heap size in MiB (0 derives it from the system memory)")
	flags.IntVar(&runner.width, "width", 0, "window width")
	flags.IntVar(&runner.height, "height", 0, "window height")
	flags.StringSliceVar(&runner.jvmArgs, "jvm-arg", nil, "additional jvm arguments")
	flags.BoolVar(&runner.json, "json", false, "print the command as json")
	flags.BoolVar(&runner.lines, "lines", false, "print one argument per line")

	viper.BindPFlag("playerName", flags.Lookup("player"))
	viper.BindPFlag("ramMiB", flags.Lookup("ram"))

	rootCmd.AddCommand(cmd.Command)
}

type argsRunner struct {
	flags   prepareFlags
	width   int
	height  int
	jvmArgs []string
	json    bool
	lines   bool
}

func (a *argsRunner) RunE(cmd *cobra.Command, args []string) error {
	l, result, err := a.flags.prepare(cmd.Context(), args)
	if err != nil {
		return err
	}
	if !result.Success {
		return notLaunchable(result)
	}

	composition, err := l.Compose(cmd.Context(), result, launchcmd.Options{
		PlayerName:      viper.GetString("playerName"),
		RamMiB:          viper.GetInt("ramMiB"),
		Width:           a.width,
		Height:          a.height,
		ExtraJVMArgs:    a.jvmArgs,
		LauncherName:    "prelaunch",
		LauncherVersion: Version,
	})
	if err != nil {
		if composition != nil && composition.Natives != nil {
			for name, reason := range composition.Natives.Failed {
				logger.Error(fmt.Sprintf("natives of %s: %s", name, reason))
			}
		}
		return err
	}
	if n := len(composition.Natives.Skipped); n > 0 {
		logger.Warnf("%d native files were skipped", n)
	}

	out := cmd.OutOrStdout()
	switch {
	case a.json:
		data, err := json.MarshalIndent(composition.Command, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case a.lines:
		for _, arg := range composition.Command.Argv() {
			fmt.Fprintln(out, arg)
		}
	default:
		fmt.Fprintln(out, composition.Command.String())
	}
	return nil
}
