package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nautilus/internal/gallery"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Manage per-user face galleries",
}

var peopleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List people in a user's gallery",
	Args:  cobra.NoArgs,
	RunE:  runPeopleList,
}

var peopleDeleteCmd = &cobra.Command{
	Use:   "delete <person>",
	Short: "Delete a person and all their gallery images",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeopleDelete,
}

var peopleImportCmd = &cobra.Command{
	Use:   "import <person> <dir>...",
	Short: "Import image files from directories into a person's gallery",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPeopleImport,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.AddCommand(peopleListCmd)
	peopleCmd.AddCommand(peopleDeleteCmd)
	peopleCmd.AddCommand(peopleImportCmd)

	peopleCmd.PersistentFlags().String("user", "", "Gallery owner username (required)")
	_ = peopleCmd.MarkPersistentFlagRequired("user")
}

func runPeopleList(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	user := mustGetString(cmd, "user")

	people, err := a.stores.Images.ListPeople(user)
	if err != nil {
		return fmt.Errorf("listing people: %w", err)
	}
	if len(people) == 0 {
		fmt.Printf("No people in %s's gallery.\n", user)
		return nil
	}

	for _, p := range people {
		fmt.Printf("%-32s %d images\n", p.Name, len(p.Images))
	}
	return nil
}

func runPeopleDelete(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	user := mustGetString(cmd, "user")
	person := args[0]

	if err := a.stores.Images.DeletePerson(user, person); err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}

	fmt.Printf("Deleted %s from %s's gallery\n", person, user)
	return nil
}

func runPeopleImport(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	user := mustGetString(cmd, "user")
	person := args[0]
	dirs := args[1:]

	files, err := collectImageFiles(dirs, a.cfg.Storage.ImageExtensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No image files found.")
		return nil
	}

	fmt.Printf("Importing %d images into %s's gallery for %s\n\n", len(files), user, person)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Importing images"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	imported := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			a.logger.Warn("skipping unreadable file",
				zap.String("path", path),
				zap.Error(err),
			)
			_ = bar.Add(1)
			continue
		}

		items := []gallery.Item{{Data: data, OriginalName: filepath.Base(path)}}
		if _, err := a.stores.Images.SaveGalleryImages(user, person, items); err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		imported++
		_ = bar.Add(1)
	}

	fmt.Printf("\n\nImported %d of %d images\n", imported, len(files))
	return nil
}

// collectImageFiles walks the given directories and returns every file
// whose extension is in exts.
func collectImageFiles(dirs []string, exts []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			for _, allowed := range exts {
				if ext == allowed {
					files = append(files, path)
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", dir, err)
		}
	}
	return files, nil
}
