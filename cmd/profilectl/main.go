// Command profilectl manages the sqlite sign catalog: bootstrap it from
// YAML profile documents, list stored signs, and show one profile.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handslab/signcoach/internal/profile"
)

func main() {
	root := &cobra.Command{
		Use:           "profilectl",
		Short:         "Manage the signcoach sign catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var dbPath string
	root.PersistentFlags().StringVar(&dbPath, "catalog", "signcoach.db", "path to the catalog database")

	root.AddCommand(bootstrapCmd(&dbPath))
	root.AddCommand(listCmd(&dbPath))
	root.AddCommand(showCmd(&dbPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #region bootstrap

func bootstrapCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap <profile-dir>",
		Short: "Load every YAML profile document in a directory into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := profile.LoadDir(args[0])
			if err != nil {
				return err
			}

			catalog, err := profile.OpenCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer catalog.Close()

			for _, doc := range docs {
				p, err := doc.ToProfile()
				if err != nil {
					return err
				}
				if err := catalog.Put(p); err != nil {
					return err
				}
				fmt.Printf("stored %s\n", p.SignName)
			}
			fmt.Printf("bootstrapped %d profiles into %s\n", len(docs), *dbPath)
			return nil
		},
	}
}

// #endregion bootstrap

// #region list

func listCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sign names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := profile.OpenCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer catalog.Close()

			names, err := catalog.ListNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			fmt.Printf("%d profiles\n", len(names))
			return nil
		},
	}
}

// #endregion list

// #region show

func showCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sign>",
		Short: "Print one stored profile as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := profile.OpenCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer catalog.Close()

			p, err := catalog.Get(args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(profile.FromProfile(p), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

// #endregion show
