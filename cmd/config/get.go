package config

import (
	"fmt"

	"github.com/minepkg/prelaunch/internals/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "get [key]",
		Short: "Gets a global config value (or all of them)",
		Args:  cobra.MaximumNArgs(1),
	}, &getRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type getRunner struct{}

func (i *getRunner) RunE(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("Printing all config entries:")
		for _, key := range keys() {
			fmt.Println(commands.KeyValue("  "+key, fmt.Sprintf("%v", viper.Get(key))))
		}
		return nil
	}

	entry, ok := lookup(args[0])
	if !ok {
		return unknownKey(args[0])
	}

	fmt.Println("Printing config entry:")
	fmt.Printf("  %s: %v\n", entry.key, viper.Get(entry.key))
	fmt.Printf("  %s\n", entry.help)

	return nil
}

func unknownKey(key string) error {
	return &commands.CliError{
		Text:        fmt.Sprintf("config key \"%s\" does not exist", key),
		Suggestions: []string{"Run `prelaunch config get` to see all keys"},
	}
}
