package main

import (
	"github.com/cpunion/ytgrab/logger"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <url> <output_path> <format>",
	Short: "Download a video and mux its best video and audio streams",
	Example: `ytgrab download https://www.youtube.com/watch?v=UaH8cAGdjzw ./clip.mp4 mp4
ytgrab download -y https://youtu.be/UaH8cAGdjzw ./clip.webm webm`,
	Args: cobra.ExactArgs(3),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	url, output, format := args[0], args[1], args[2]

	svc, ffmpeg, err := newService()
	if err != nil {
		return err
	}
	if err := ffmpeg.Check(cmd.Context()); err != nil {
		return err
	}

	log := logger.Get("CLI")
	log.Emit(logger.INFO, "Downloading %s as %s to %s\n", url, format, output)
	if err := svc.Download(cmd.Context(), url, output, format); err != nil {
		return err
	}

	log.Emit(logger.SUCCESS, "Download completed: %s\n", output)
	return nil
}
