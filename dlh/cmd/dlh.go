// Command dlh is a terminal client for the Digital Learning Hub tutor.
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"dlh/dlh/utils/color"
	httputils "dlh/dlh/utils/http"
	"dlh/dlh/utils/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8000"

var (
	apiURL  string
	token   string
	noColor bool

	rootCmd = &cobra.Command{
		Use:           "dlh",
		Short:         "Chat with the Digital Learning Hub tutor from your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.Disable()
			}
			if dir, err := configDir(); err == nil {
				logging.InitLogger(filepath.Join(dir, "logs"))
			}
		},
	}
)

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("DLH_API_URL", defaultAPIURL), "DLH API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("DLH_TOKEN"), "bearer token (defaults to the one saved by login)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(loginCmd, sessionsCmd, chatCmd)

	err := rootCmd.ExecuteContext(context.Background())
	logging.Sync()
	if err != nil {
		os.Stderr.WriteString(color.Error("error: "+err.Error()) + "\n")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "dlh"), nil
}

func tokenPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token"), nil
}

func saveToken(tok string) error {
	p, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(tok+"\n"), 0o600)
}

// authedClient returns an API client carrying the --token flag or the saved token.
func authedClient() (*httputils.Client, error) {
	c := httputils.NewClient(apiURL)
	c.Token = strings.TrimSpace(token)
	if c.Token == "" {
		if p, err := tokenPath(); err == nil {
			if b, err := os.ReadFile(p); err == nil {
				c.Token = strings.TrimSpace(string(b))
			}
		}
	}
	if c.Token == "" {
		return nil, errors.New("not logged in, run `dlh login` first")
	}
	return c, nil
}
