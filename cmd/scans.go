package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Inspect and manage the scan history",
}

var scansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scan records",
	Args:  cobra.NoArgs,
	RunE:  runScansList,
}

var scansDeleteCmd = &cobra.Command{
	Use:   "delete <file-name>",
	Short: "Delete a scan record and its stored image",
	Args:  cobra.ExactArgs(1),
	RunE:  runScansDelete,
}

func init() {
	rootCmd.AddCommand(scansCmd)
	scansCmd.AddCommand(scansListCmd)
	scansCmd.AddCommand(scansDeleteCmd)

	scansListCmd.Flags().String("user", "", "Only show records for this user")
}

func runScansList(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	user := mustGetString(cmd, "user")

	records, err := a.stores.History.All()
	if err != nil {
		return fmt.Errorf("loading scans: %w", err)
	}

	shown := 0
	for _, rec := range records {
		if user != "" && rec.User != user {
			continue
		}
		fmt.Printf("%s  %-12s  %-24s  %s\n", rec.Date, rec.User, rec.Emotion, rec.FileName)
		shown++
	}
	if shown == 0 {
		fmt.Println("No scan records found.")
	}
	return nil
}

func runScansDelete(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	fileName := args[0]
	found, err := a.stores.History.Delete(fileName)
	if err != nil {
		return fmt.Errorf("deleting scan: %w", err)
	}
	if !found {
		return fmt.Errorf("no scan record with file name %q", fileName)
	}

	fmt.Printf("Deleted scan %s\n", fileName)
	return nil
}
