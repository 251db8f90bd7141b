package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/query"
	"github.com/akilaweerasekara/Home-Inventory/internal/service"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, a)
		},
	}
}

func newMembersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List household members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printMembers(cmd.OutOrStdout(), a.household.ListMembers())
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		category string
		as       int64
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search items by name, location, description or category",
		Long: `Search lists matching family items. Use --as with a member ID to
include that member's private items; their password is asked for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.household.NewSession()
			defer a.household.EndSession(s)

			if as != 0 {
				p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				password, err := p.password("Password: ")
				if err != nil {
					return err
				}
				if err := a.household.Unlock(cmd.Context(), s, as, password); err != nil {
					return err
				}
			}

			filter := query.Filter{
				Text:     strings.Join(args, " "),
				Category: models.Category(category),
			}
			printItems(cmd.OutOrStdout(), a.household.Search(s, filter))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only items in this category")
	cmd.Flags().Int64Var(&as, "as", 0, "member ID to unlock private items for")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of all members and items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "-" {
				return a.household.WriteBackup(cmd.Context(), cmd.OutOrStdout())
			}
			if out == "" {
				out = service.BackupFilename(time.Now())
			}
			if err := writeBackupFile(cmd, a.household, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data exported to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or - for stdout (default familysync-backup-<date>.json)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all members and items with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			return importBackupFile(cmd, a.household, p, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored members, items and photos",
		Long: `Reset clears the store. The next run starts again from the default
household. Export a backup first if you want to keep anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if !yes && !p.confirm("This will delete all data. Continue?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
				return nil
			}
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func writeBackupFile(cmd *cobra.Command, h *service.Household, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if err := h.WriteBackup(cmd.Context(), f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func importBackupFile(cmd *cobra.Command, h *service.Household, p *prompter, path string, yes bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	bundle, err := service.ParseBackup(f)
	if err != nil {
		return err
	}

	if !yes && !p.confirm("This will replace all current data. Continue?") {
		fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled.")
		return nil
	}

	if err := h.Import(cmd.Context(), bundle); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Data imported successfully: %d members, %d items\n", len(bundle.Users), len(bundle.Items))
	return nil
}
