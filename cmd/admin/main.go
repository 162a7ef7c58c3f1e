// Command admin manages device tokens for the mirrorday server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/spf13/cobra"

	"github.com/mirrorday/mirrorday/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative tools for the mirrorday server",
	}

	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newDumpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTokenCmd() *cobra.Command {
	var (
		deviceID   string
		deviceName string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mint-token",
		Short: "Mint a device token",
		Long: `Mints an HMAC-signed device token for installing on a new device.
The signing secret is read from DEVICE_TOKEN_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("DEVICE_TOKEN_SECRET")
			if secret == "" {
				return fmt.Errorf("DEVICE_TOKEN_SECRET is not set")
			}
			if deviceID == "" {
				return fmt.Errorf("--device-id is required")
			}

			builder := jwt.NewBuilder().
				Subject(deviceID).
				IssuedAt(time.Now()).
				Expiration(time.Now().Add(ttl))
			if deviceName != "" {
				builder = builder.Claim("device_name", deviceName)
			}
			token, err := builder.Build()
			if err != nil {
				return fmt.Errorf("failed to build token: %w", err)
			}

			signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(secret)))
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Println(string(signed))
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceID, "device-id", "", "stable identifier for the device")
	cmd.Flags().StringVar(&deviceName, "device-name", "", "human-readable device name")
	cmd.Flags().DurationVar(&ttl, "ttl", 90*24*time.Hour, "token lifetime")
	return cmd
}

func newDumpCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the local reminders file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("failed to resolve home directory: %w", err)
				}
				path = home + "/.mirrorday/reminders.json"
			}

			reminders, err := store.NewFileStore(path).Load()
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			now := time.Now()
			for _, reminder := range reminders {
				fmt.Printf("%s  %s  %s  (%d days, modified %s)\n",
					reminder.ID,
					reminder.Date.Format("2006-01-02"),
					reminder.Title,
					reminder.DaysRemaining(now),
					reminder.ModifiedAt.Format(time.RFC3339),
				)
			}
			fmt.Printf("%d reminders\n", len(reminders))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the reminders file")
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect-token <token>",
		Short: "Inspect a device token",
		Long: `Verifies a device token against DEVICE_TOKEN_SECRET and prints its
claims. With no secret set, the token is parsed without verification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("DEVICE_TOKEN_SECRET")

			var token jwt.Token
			var err error
			verified := false
			if secret != "" {
				token, err = jwt.Parse([]byte(args[0]), jwt.WithKey(jwa.HS256, []byte(secret)), jwt.WithValidate(true))
				verified = err == nil
			}
			if token == nil {
				token, err = jwt.Parse([]byte(args[0]), jwt.WithVerify(false), jwt.WithValidate(false))
				if err != nil {
					return fmt.Errorf("failed to parse token: %w", err)
				}
			}

			fmt.Printf("device_id: %s\n", token.Subject())
			if name, ok := token.Get("device_name"); ok {
				fmt.Printf("device_name: %v\n", name)
			}
			fmt.Printf("issued_at: %s\n", token.IssuedAt().Format(time.RFC3339))
			fmt.Printf("expires: %s\n", token.Expiration().Format(time.RFC3339))
			fmt.Printf("verified: %v\n", verified)
			return nil
		},
	}
	return cmd
}
