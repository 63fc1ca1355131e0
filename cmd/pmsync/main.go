package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/blackcoderx/pmsync/pkg/core"
	"github.com/blackcoderx/pmsync/pkg/logging"
	"github.com/blackcoderx/pmsync/pkg/storage"
	"github.com/blackcoderx/pmsync/pkg/syncer"
	"github.com/blackcoderx/pmsync/pkg/tui"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	cfgFile        string
	definitionFile string
	verbose        bool
	useTUI         bool
	confirm        bool
	copyUID        bool

	rootCmd = &cobra.Command{
		Use:   "pmsync",
		Short: "Sync a Postman environment and collection from a local definition",
		Long: `pmsync pushes a locally authored environment and collection to the Postman API.
Each asset is looked up by name: an existing one is replaced wholesale,
a missing one is created. Remote-only changes are overwritten.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context())
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .pmsync/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every remote call")
	rootCmd.PersistentFlags().StringVarP(&definitionFile, "definition", "d", "", "Definition file (default is .pmsync/definition.yaml)")

	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "Show a live progress view")
	rootCmd.Flags().BoolVar(&confirm, "confirm", false, "Ask before writing to the remote")
	rootCmd.Flags().BoolVar(&copyUID, "copy-uid", false, "Copy the collection uid to the clipboard")
}

func initConfig() {
	// Load .env file if it exists (optional, warn if malformed)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load .env file: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(core.FolderName)
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// loadDefinition reads the definition named by the flag or settings and
// applies the configured name overrides.
func loadDefinition(settings core.Settings) (*storage.Definition, error) {
	path := definitionFile
	if path == "" {
		path = settings.Definition
	}
	def, err := storage.LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	settings.ApplyNames(def)
	return def, nil
}

func runSync(ctx context.Context) error {
	logger := logging.New(verbose)
	defer func() { _ = logger.Sync() }()

	settings, err := core.LoadSettings()
	if err != nil {
		return err
	}
	def, err := loadDefinition(settings)
	if err != nil {
		return err
	}
	for _, name := range storage.MissingVariables(def) {
		logger.Warn("variable used by the collection is not defined in the environment", zap.String("variable", name))
	}

	if confirm {
		ok, err := core.Confirm(
			fmt.Sprintf("Replace %q and %q on %s?", def.Environment.Name, def.Collection.Name, settings.BaseURL),
			"Existing assets with these names are overwritten entirely.",
		)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted, nothing was written.")
			return nil
		}
	}

	client, err := settings.NewClient(ctx, logger)
	if err != nil {
		return err
	}
	s := syncer.NewForClient(client, syncer.WithLogger(logger))

	run := func(ctx context.Context, cb syncer.EventCallback) (*syncer.RunResult, error) {
		return syncer.NewOrchestrator(s, syncer.WithEventCallback(cb)).Run(ctx, def.Environment, def.Collection)
	}

	var result *syncer.RunResult
	if useTUI {
		result, err = tui.Run(ctx, run)
	} else {
		result, err = run(ctx, func(e syncer.Event) {
			if line := tui.FormatEvent(e); line != "" && e.Type != syncer.EventError {
				fmt.Println(line)
			}
		})
	}
	if err != nil {
		return err
	}

	fmt.Print(tui.RenderSummary(result, 100))

	if copyUID {
		if err := clipboard.WriteAll(result.Collection.RemoteID); err != nil {
			logger.Warn("failed to copy collection uid", zap.Error(err))
		} else {
			fmt.Println("Collection uid copied to clipboard.")
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
