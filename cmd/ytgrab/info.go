package main

import (
	"github.com/cpunion/ytgrab/logger"
	"github.com/cpunion/ytgrab/thumbnail"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:     "info <url> <output_dir>",
	Short:   "Print a video's title and save its thumbnail",
	Example: `ytgrab info https://youtu.be/UaH8cAGdjzw ./thumbnails`,
	Args:    cobra.ExactArgs(2),
	RunE:    runInfo,
}

var clearCache bool

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Remove existing files from output_dir first")
}

func runInfo(cmd *cobra.Command, args []string) error {
	url, dir := args[0], args[1]

	if clearCache {
		if _, err := thumbnail.ClearCache(dir); err != nil {
			logger.Get("CLI").Emit(logger.WARNING, "Failed to clear thumbnail cache: %v\n", err)
		}
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}

	// Lookup failures are reported in the JSON document, not the exit code.
	res := svc.Info(cmd.Context(), url, dir)
	return writeJSON(cmd.OutOrStdout(), res, "    ")
}
