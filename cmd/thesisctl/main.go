// Package main is the thesisctl admin CLI. It operates on the record store
// directly, so run it against a store the API server is not holding open.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"thesis-management-api/config"
	"thesis-management-api/storage"
)

var rootCmd = &cobra.Command{
	Use:   "thesisctl",
	Short: "Administer the thesis portal record store",
	Long: `thesisctl manages the pebble-backed record store behind the thesis portal:
seed it with fixture data, inspect its contents and footprint, and clear or
reset it. All commands honor the same STORAGE_* environment variables as the
API server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	},
}

// withStore opens the store, runs fn, and closes it.
func withStore(fn func(*storage.Store) error) error {
	store, err := storage.Open(config.StorageConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the thesis collection with seed data",
	RunE: func(cmd *cobra.Command, args []string) error {
		records := storage.SeedTheses()
		if seedFile != "" {
			var err error
			records, err = storage.LoadSeedFile(seedFile)
			if err != nil {
				return err
			}
		}
		return withStore(func(s *storage.Store) error {
			_, rev := s.LoadTheses()
			if _, err := s.SaveTheses(records, rev); err != nil {
				return err
			}
			fmt.Printf("Seeded %d thesis records\n", len(records))
			return nil
		})
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Print the store's total persisted footprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *storage.Store) error {
			fmt.Printf("%d bytes\n", s.UsageBytes())
			return nil
		})
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the thesis collection as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *storage.Store) error {
			records, rev := s.LoadTheses()
			out, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("revision %d\n%s\n", rev, out)
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the thesis and message collections only",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *storage.Store) error {
			return s.ClearAppData()
		})
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe everything in the store (irreversible)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("refusing to wipe storage without --yes")
		}
		return withStore(func(s *storage.Store) error {
			return s.ResetAll()
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML file with seed records (default: built-in seed)")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the wipe")
	rootCmd.AddCommand(seedCmd, usageCmd, dumpCmd, clearCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
