// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/avaldiviap/serenigeo/geocode"
	"github.com/avaldiviap/serenigeo/geocode/utils"
)

// addressChunk bounds the size of each insert transaction during seeding.
const addressChunk = 500

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Rebuild the address database from the seed file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		// remove old db if it exists
		_ = os.Remove(geocodeOpts.dbFile())
		_ = os.Remove(geocodeOpts.dbFile() + ".wal")

		db, repo, err := openRepository(&geocodeOpts, false)
		if err != nil {
			return err
		}
		defer db.Close()

		seed, err := geocode.ReadSeed(geocodeOpts.SeedFile)
		if err != nil {
			return fmt.Errorf("reading seed: %w", err)
		}

		if err := repo.BulkInsertStreets(seed.Streets); err != nil {
			return fmt.Errorf("inserting streets: %w", err)
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(seed.Addresses),
				progressbar.OptionSetDescription("Seeding addresses"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		for start := 0; start < len(seed.Addresses); start += addressChunk {
			end := min(start+addressChunk, len(seed.Addresses))

			if err := repo.BulkInsertAddresses(seed.Addresses[start:end]); err != nil {
				return fmt.Errorf("inserting addresses: %w", err)
			}

			if bar != nil {
				_ = bar.Add(end - start)
			}
		}

		if bar != nil {
			_ = bar.Finish()
		}

		fmt.Printf("Database seeded: %s streets, %s addresses.\n",
			utils.FormatInt(int64(len(seed.Streets))),
			utils.FormatInt(int64(len(seed.Addresses))),
		)

		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the address database to a seed file",
	Long:  `Exports every street and address to a local JSON file. The file is sorted to minimize diffs when checking into version control.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, repo, err := openRepository(&geocodeOpts, true)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := geocode.ExportToJSON(repo, args[0]); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}

		fmt.Printf("Exported to %s\n", args[0])

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
}
