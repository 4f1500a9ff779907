package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shopping-list/internal/client"
	"shopping-list/internal/controller"
	"shopping-list/internal/logger"
	"shopping-list/internal/models"
	"shopping-list/internal/tui"
)

var listFilter string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the shopping list",
	RunE:    runList,
}

var addCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add an item (words are joined)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var doneCmd = &cobra.Command{
	Use:     "done <id>",
	Aliases: []string{"toggle"},
	Short:   "Toggle an item's completed state",
	Args:    cobra.ExactArgs(1),
	RunE:    runDone,
}

var renameCmd = &cobra.Command{
	Use:   "rename <id> <name>...",
	Short: "Rename an item",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRename,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an item",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all completed items",
	RunE:  runClear,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive shopping list",
	RunE:  runTUI,
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "all", "all|completed|pending")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
}

// session — клиент с проверкой, что вход уже выполнен.
func session() (*client.Client, error) {
	st, err := store()
	if err != nil {
		return nil, err
	}
	c, err := newClient(st)
	if err != nil {
		return nil, err
	}
	return c, mustLogin(c)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return id, nil
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := session()
	if err != nil {
		return err
	}
	items, err := c.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	shown := 0
	for _, it := range items {
		switch listFilter {
		case "completed":
			if !it.Completed {
				continue
			}
		case "pending":
			if it.Completed {
				continue
			}
		}
		printItem(out, it)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "Your list is empty")
	}
	fmt.Fprintln(out, models.CountItems(items).Text())
	return nil
}

func printItem(w io.Writer, it models.Item) {
	box := "[ ]"
	if it.Completed {
		box = "[x]"
	}
	fmt.Fprintf(w, "%4d %s %s\n", it.ID, box, it.Name)
}

func runAdd(cmd *cobra.Command, args []string) error {
	c, err := session()
	if err != nil {
		return err
	}
	it, err := c.Add(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added item #%d: %s\n", it.ID, it.Name)
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	c, err := session()
	if err != nil {
		return err
	}
	it, err := c.Toggle(cmd.Context(), id)
	if err != nil {
		return err
	}
	printItem(cmd.OutOrStdout(), it)
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	c, err := session()
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")
	it, err := c.Update(cmd.Context(), id, models.UpdateItemRequest{Name: &name})
	if err != nil {
		return err
	}
	printItem(cmd.OutOrStdout(), it)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	c, err := session()
	if err != nil {
		return err
	}
	if err := c.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Item #%d deleted\n", id)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	c, err := session()
	if err != nil {
		return err
	}
	items, err := c.List(cmd.Context())
	if err != nil {
		return err
	}
	counts := models.CountItems(items)
	if counts.Completed == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clear")
		return nil
	}
	if !clearYes && !confirm(cmd, counts.ClearPrompt()) {
		return nil
	}
	removed, err := c.ClearCompleted(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", removed)
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func runTUI(cmd *cobra.Command, args []string) error {
	st, err := store()
	if err != nil {
		return err
	}
	c, err := session()
	if err != nil {
		return err
	}

	// вывод логов поверх alt screen ломает экран
	logger.SetLevel(logger.LevelError)
	needLogin, err := tui.Run(cmd.Context(), controller.New(c, st))
	if err != nil {
		return err
	}
	if needLogin {
		// сессия на сервере уже не действует
		if err := st.DeleteCredentials(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Session ended, run 'shopctl login' to continue")
	}
	return nil
}
