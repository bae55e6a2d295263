package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/sitelogs/pkg/config"
	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/logging"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change persisted settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != config.SettingLogRoot {
				return errors.NewValidationError("key", fmt.Sprintf("unknown setting (known: %v)", config.KnownSettings()), args[0])
			}
			app.printf("%s\n", app.cfg.LogRoot)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Persist a setting",
		Example: `  sitelogs config set log-root ~/work/site-logs`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if key == config.SettingLogRoot {
				abs, err := filepath.Abs(value)
				if err != nil {
					return err
				}
				value = abs
			}

			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			if err := settings.Set(key, value); err != nil {
				return errors.NewValidationError("key", err.Error(), key)
			}
			if err := settings.Save(); err != nil {
				return err
			}

			app.log.ComponentInfo(logging.ComponentCLI, "Setting saved", zap.String("key", key), zap.String("value", value))
			app.printf("%s = %s\n", key, value)
			return nil
		},
	})
	return cmd
}
