// Package cmd provides the entrypoint for the webhook-relay cli.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultConfigFilePath = "config.yaml"
	configFileEnv         = "RELAY_CONFIG"
	modeAnnotation        = "mode"
)

var logger = helpers.NewNoopLogger()

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
}

// New returns the root command for the webhook-relay.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "webhook-relay",
		Short:         "Forward JSON payloads to a preconfigured webhook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if mode, ok := cmd.Annotations[modeAnnotation]; ok {
				config.Global.Mode = mode
			}
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				AddSource: config.Global.Logging.CallerTrace,
				Level:     slog.LevelWarn - slog.Level(config.Global.Logging.Verbosity*4),
			})).With("mode", config.Global.Mode)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return runService(cmd)
			case config.ModeLambdaHTTP:
				return runLambdaHTTP(cmd)
			case config.ModeLambdaEvent:
				return runLambdaEvent(cmd)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	// Configuration loading & defaults
	configFilePath := defaultConfigFilePath
	if path, found := os.LookupEnv(configFileEnv); found {
		configFilePath = path
	}
	if err := errors.Join(
		config.LoadFromFile(configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapDuration)
}
