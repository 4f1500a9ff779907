package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shopping-list/internal/client"
	"shopping-list/internal/logger"
	"shopping-list/internal/prefs"
)

const defaultServer = "https://localhost:7666"

var (
	serverURL string
	homeDir   string
	insecure  bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:           "shopctl",
	Short:         "Shopping list client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", os.Getenv("SHOPPING_SERVER"), "server URL (default from saved login or "+defaultServer+")")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "directory for credentials and settings (default ~/.shopping)")
	rootCmd.PersistentFlags().BoolVarP(&insecure, "insecure", "k", false, "skip TLS certificate verification (self-signed certs)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug|info|warn|error")

	rootCmd.AddCommand(loginCmd, logoutCmd, listCmd, addCmd, doneCmd, renameCmd, rmCmd, clearCmd, tuiCmd, exportCmd, importCmd)
}

func main() {
	logger.Init("shopctl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "Error: not logged in, run 'shopctl login'")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func store() (*prefs.Store, error) {
	dir := homeDir
	if dir == "" {
		var err error
		if dir, err = prefs.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return prefs.NewStore(dir), nil
}

// newClient собирает клиента из флагов и сохранённого входа.
func newClient(st *prefs.Store) (*client.Client, error) {
	creds, err := st.Credentials()
	if err != nil {
		return nil, err
	}

	base := strings.TrimSpace(serverURL)
	if base == "" && creds != nil {
		base = creds.Server
	}
	if base == "" {
		base = defaultServer
	}

	hc := &http.Client{Timeout: 15 * time.Second}
	if insecure {
		hc.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec
	}

	opts := []client.Option{client.WithHTTPClient(hc)}
	if creds != nil {
		if !creds.ExpiresAt.IsZero() && time.Now().After(creds.ExpiresAt) {
			logger.Warn(context.Background(), "saved session expired", "expires_at", creds.ExpiresAt)
		} else {
			opts = append(opts, client.WithToken(creds.Token))
		}
	}
	return client.New(base, opts...)
}

func mustLogin(c *client.Client) error {
	if c.Token() == "" {
		return client.ErrUnauthorized
	}
	return nil
}
