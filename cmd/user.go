package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nautilus/internal/users"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(2),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered usernames",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	username, password := args[0], args[1]
	if err := a.stores.Registry.Register(username, password); err != nil {
		if errors.Is(err, users.ErrExists) {
			return fmt.Errorf("username %q is already taken", username)
		}
		if errors.Is(err, users.ErrInvalidUsername) {
			return fmt.Errorf("username %q cannot be used as a storage directory name", username)
		}
		return fmt.Errorf("creating user: %w", err)
	}

	fmt.Printf("Created user %s\n", username)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.close()

	names, err := a.stores.Registry.List()
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	if len(names) == 0 {
		fmt.Println("No users registered.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
