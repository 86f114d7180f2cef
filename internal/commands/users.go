package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taskcore/taskcore/internal/config"
	"github.com/taskcore/taskcore/internal/db"
)

func promptPassword(cmd *cobra.Command) (string, error) {
	if pw, _ := cmd.Flags().GetString("password"); pw != "" {
		return pw, nil
	}
	fmt.Print("Password: ")

	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	// Piped stdin has no echo to suppress
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var registerCmd = &cobra.Command{
	Use:   "register <email> <login>",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()

		password, err := promptPassword(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		user, err := db.CreateUser(args[0], args[1], password)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("Registered %s <%s>\n", user.Login, user.Email)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <login>",
	Short: "Log in and become the current user",
	Long: `Verify credentials and record the login as the current user. The
current user only seeds the default assignee on new tasks.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()

		password, err := promptPassword(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		user, err := db.Authenticate(args[0], password)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		if err := config.SetCurrentUser(user.Login); err != nil {
			fmt.Printf("Error saving config: %v\n", err)
			return
		}

		fmt.Printf("Logged in as %s\n", user.Login)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	Run: func(cmd *cobra.Command, args []string) {
		user := config.CurrentUser()
		if user == "" {
			fmt.Println("Not logged in.")
			return
		}
		fmt.Println(user)
	},
}

func init() {
	registerCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
}
