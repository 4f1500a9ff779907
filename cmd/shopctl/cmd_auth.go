package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginUser     string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session token",
	Long: `Log in to the shopping list server.

The token is stored in ~/.shopping/credentials.json (0600).
SHOPPING_TOKEN overrides the saved token.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "admin", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (read from stdin when empty)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	st, err := store()
	if err != nil {
		return err
	}
	c, err := newClient(st)
	if err != nil {
		return err
	}

	password := loginPassword
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	sess, err := c.Login(cmd.Context(), loginUser, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := st.SaveCredentials(c.BaseURL(), sess.Token, sess.ExpiresAt); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s (session until %s)\n", loginUser, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	st, err := store()
	if err != nil {
		return err
	}
	if c, err := newClient(st); err == nil {
		_ = c.Logout(cmd.Context())
	}
	if err := st.DeleteCredentials(); err != nil {
		return err
	}
	if os.Getenv("SHOPPING_TOKEN") != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "note: SHOPPING_TOKEN is still set in the environment")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
	return nil
}
