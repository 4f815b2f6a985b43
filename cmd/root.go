package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwalton/gchalk"
	"github.com/minepkg/prelaunch/cmd/config"
	"github.com/minepkg/prelaunch/internals/classpath"
	"github.com/minepkg/prelaunch/internals/cmdlog"
	"github.com/minepkg/prelaunch/internals/commands"
	"github.com/minepkg/prelaunch/internals/downloadmgr"
	"github.com/minepkg/prelaunch/internals/instances"
	"github.com/minepkg/prelaunch/internals/launcher"
	"github.com/minepkg/prelaunch/internals/manifests"
	"github.com/minepkg/prelaunch/internals/ownhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set by main
var Version = "0.0.0-dev"

// Commit is set by main
var Commit = ""

var logger = cmdlog.NewWithWriter(os.Stderr)

var (
	cfgFile       string
	disableColors bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prelaunch",
	Short: "Downloads and verifies everything needed to start minecraft",
	Long: `prelaunch resolves minecraft (and fabric) versions, downloads libraries and assets,
repairs broken asset stores and prints the finished launch command.`,

	Example: `
  prelaunch prepare 1.20.1 --loader fabric
  prelaunch args latest --player Steve
  prelaunch assets verify 5`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, commands.Render(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&disableColors, "no-color", false, "disable color output")
	flags.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/prelaunch/config.toml)")
	flags.String("global-dir", "", "directory containing versions, libraries & assets (default is $HOME/.prelaunch)")
	flags.String("game-dir", "", "game directory (default is <global-dir>/instances/default)")
	flags.BoolP("verbose", "V", false, "print debug output")
	flags.Bool("non-interactive", false, "never prompt and never render animated progress")
	flags.Int("concurrency", 0, "maximum parallel downloads (0 scales with the amount of files)")

	viper.BindPFlag("globalDir", flags.Lookup("global-dir"))
	viper.BindPFlag("gameDir", flags.Lookup("game-dir"))
	viper.BindPFlag("verboseLogging", flags.Lookup("verbose"))
	viper.BindPFlag("nonInteractive", flags.Lookup("non-interactive"))
	viper.BindPFlag("concurrency", flags.Lookup("concurrency"))

	setDefaults()

	rootCmd.AddCommand(config.SubCmd)
}

func setDefaults() {
	viper.SetDefault("retries", downloadmgr.DefaultRetries)
	viper.SetDefault("backoff", downloadmgr.DefaultBackoff)
	viper.SetDefault("requestTimeout", downloadmgr.DefaultTimeout)
	viper.SetDefault("rateLimit", 0)
	viper.SetDefault("mirrors.base.primary", manifests.DefaultBase.Primary)
	viper.SetDefault("mirrors.base.fallback", manifests.DefaultBase.Fallback)
	viper.SetDefault("mirrors.overlay.primary", manifests.DefaultOverlay.Primary)
	viper.SetDefault("mirrors.overlay.fallback", manifests.DefaultOverlay.Fallback)
	viper.SetDefault("resourcesCdn", downloadmgr.DefaultResourcesURL)
	viper.SetDefault("libraryRepositories", downloadmgr.DefaultLibraryRepositories)
	viper.SetDefault("classpathStrategy", "graph")
	viper.SetDefault("playerName", "Player")
	viper.SetDefault("ramMiB", 0)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if disableColors || os.Getenv("CI") != "" {
		gchalk.SetLevel(gchalk.LevelNone)
		commands.EmojiEnabled = false
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if configDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(configDir, "prelaunch"))
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("PRELAUNCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}

	logger.SetVerbose(viper.GetBool("verboseLogging"))
}

func globalDir() (string, error) {
	if dir := viper.GetString("globalDir"); dir != "" {
		return dir, nil
	}
	return instances.DefaultGlobalDir()
}

func httpClient() *http.Client {
	return ownhttp.NewWithOptions(ownhttp.Options{RateLimit: viper.GetFloat64("rateLimit")})
}

// newLauncher returns a launcher configured from flags, env & the config file
func newLauncher() (*launcher.Launcher, error) {
	dir, err := globalDir()
	if err != nil {
		return nil, err
	}

	strategy, err := classpath.StrategyByName(viper.GetString("classpathStrategy"))
	if err != nil {
		return nil, err
	}

	client := httpClient()
	l := launcher.New(instances.New(dir, viper.GetString("gameDir")))
	l.Logger = logger
	l.Strategy = strategy
	l.Concurrency = viper.GetInt("concurrency")
	l.LibraryRepositories = viper.GetStringSlice("libraryRepositories")
	l.Download = downloadmgr.Options{
		Client:  client,
		Retries: viper.GetInt("retries"),
		Backoff: viper.GetDuration("backoff"),
		Timeout: viper.GetDuration("requestTimeout"),
	}

	l.Loader.Client = client
	l.Loader.Logger = logger
	l.Loader.Backoff = time.Second
	l.Loader.Timeout = viper.GetDuration("requestTimeout")
	l.Loader.Base = endpoint("mirrors.base")
	l.Loader.Overlay = endpoint("mirrors.overlay")

	l.Assets.CDN = viper.GetString("resourcesCdn")
	return l, nil
}

// endpoint reads the nested keys one by one so env variables apply to each of them
func endpoint(key string) manifests.Endpoint {
	return manifests.Endpoint{
		Primary:  viper.GetString(key + ".primary"),
		Fallback: viper.GetString(key + ".fallback"),
	}
}

func nonInteractive() bool {
	return viper.GetBool("nonInteractive")
}
