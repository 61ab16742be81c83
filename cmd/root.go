package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "nautilus",
	Short: "A face scan demo service with flat-file storage",
	Long: `Nautilus is a face scanning demo application. It stores user accounts
and scan history in flat JSON files, keeps scan images and per-person face
galleries on disk, and delegates face detection, emotion inference and
identity matching to an external engine behind a small HTTP interface.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding users.json, scans.json and the image stores")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
