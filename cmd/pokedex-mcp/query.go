package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pokedex-mcp/internal/format"
)

func newGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show one Pokemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return printMarkdown(cmd, flags, a.tools.GetPokemon(cmd.Context(), args[0]))
		},
	}
}

func newCompareCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <name1> <name2>",
		Short: "Compare two Pokemon",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return printMarkdown(cmd, flags, a.tools.ComparePokemon(cmd.Context(), args[0], args[1]))
		},
	}
}

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search Pokemon names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.svc.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return printMarkdown(cmd, flags, format.Listing(fmt.Sprintf("Search results for %q", args[0]), res))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results")
	return cmd
}

func newFavoritesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage the favorites list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			favs, err := a.favorites.List(cmd.Context())
			if err != nil {
				return err
			}
			return printMarkdown(cmd, flags, format.Favorites(favs))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a Pokemon to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			p, err := a.svc.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			added, err := a.favorites.Add(cmd.Context(), p.ID, p.Name)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already a favorite\n", p.Name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (#%d)\n", p.Name, p.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a favorite by Pokemon id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			removed, err := a.favorites.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d is not a favorite\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed #%d\n", id)
			return nil
		},
	})
	return cmd
}
