// Command widget renders the home-screen widget entry from the locally
// persisted reminder file. It never touches the network or the store.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/config"
	"github.com/mirrorday/mirrorday/internal/logger"
	"github.com/mirrorday/mirrorday/internal/widget"
)

func main() {
	var (
		file       string
		jsonOutput bool
	)

	rootCmd := &cobra.Command{
		Use:   "widget",
		Short: "Show the soonest upcoming reminder",
		Long: `Reads the local reminder file and prints the single soonest reminder
with days remaining. A missing or unreadable file prints nothing and
exits cleanly; the widget never fails loudly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			zapLogger, err := logger.NewDevelopment(false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync(zapLogger) }()

			if file == "" {
				cfg, err := config.Load()
				if err != nil {
					// Widget reads need no remote config; fall back to the
					// default data dir rather than failing
					zapLogger.Debug("config_unavailable_using_default_data_dir", zap.Error(err))
					home, homeErr := os.UserHomeDir()
					if homeErr != nil {
						return homeErr
					}
					file = home + "/.mirrorday/reminders.json"
				} else {
					file = cfg.RemindersFile()
				}
			}

			entry := widget.New(file, zapLogger).Next()
			if entry == nil {
				if jsonOutput {
					fmt.Println("null")
				}
				return nil
			}

			if jsonOutput {
				data, err := json.MarshalIndent(entry, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			switch entry.DaysRemaining {
			case 0:
				fmt.Printf("%s is today!\n", entry.Reminder.Title)
			case 1:
				fmt.Printf("%s in 1 day\n", entry.Reminder.Title)
			default:
				fmt.Printf("%s in %d days\n", entry.Reminder.Title, entry.DaysRemaining)
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&file, "file", "f", "", "reminder file (defaults to the configured data dir)")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the entry as JSON")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
