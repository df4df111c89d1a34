package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dockship/dockship/internal/config"
	"github.com/dockship/dockship/internal/constants"
	"github.com/dockship/dockship/internal/logging"
	"github.com/dockship/dockship/internal/nginx"
	"github.com/dockship/dockship/internal/security"
	"github.com/dockship/dockship/internal/ssh"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove the deployed application from the server",
	Long: `Removes everything a deployment created on the server:

1. Stops and removes the application container
2. Deletes the application directory
3. Restores the Nginx site config from the backup taken by the first deploy

Installed packages (Docker, Nginx) are left in place. The command is
idempotent: running it on a clean server succeeds with nothing to do.`,
	Args: cobra.NoArgs,
	RunE: runCleanupCmd,
}

var (
	cleanupUser string
	cleanupHost string
	cleanupKey  string
)

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().StringVar(&cleanupUser, "user", "", "SSH user on the server")
	cleanupCmd.Flags().StringVar(&cleanupHost, "host", "", "Server IPv4 address")
	cleanupCmd.Flags().StringVar(&cleanupKey, "key", "", "SSH private key path (default: ~/.ssh/id_rsa)")
}

func runCleanupCmd(cmd *cobra.Command, args []string) error {
	var err error
	runLog, err = logging.Open(logDir)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer runLog.Close()

	saved, err := config.LoadDefaults()
	if err != nil {
		saved = &config.Defaults{}
	}

	user := cleanupUser
	host := cleanupHost
	keyPath := cleanupKey
	if user == "" {
		user = saved.User
	}
	if host == "" {
		host = saved.Host
	}
	if keyPath == "" {
		keyPath = saved.KeyPath
	}

	if IsInteractive() {
		if user == "" {
			user = PromptString("SSH user", "")
		}
		if host == "" {
			host = PromptString("Server IPv4 address", "")
		}
		if keyPath == "" {
			keyPath = PromptString("SSH key path", constants.DefaultKeyPath)
		}
	}
	if keyPath == "" {
		keyPath = constants.DefaultKeyPath
	}
	keyPath = config.ExpandPath(keyPath)

	if err := config.ValidateHost(host); err != nil {
		return err
	}
	if err := security.ValidateUnixUser(user); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	PrintInfo("Connecting to %s...", host)
	client := ssh.NewClient(host, user, constants.DefaultSSHPort, keyPath)
	if err := client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	deployed, err := ssh.DirectoryExists(ctx, client, constants.BasePath)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	if !deployed {
		PrintInfo("No application directory on %s; removing leftovers only", host)
	}

	hasBackup, err := ssh.FileExists(ctx, client, constants.NginxBackupPath)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	if !hasBackup {
		PrintWarning("No Nginx backup on %s; leaving the current site config", host)
	}

	commands := cleanupCommands(deployed, hasBackup)
	for _, command := range commands {
		PrintVerboseCommand(command)
	}
	if err := ssh.ExecMultiple(ctx, client, commands); err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	PrintSuccess("Cleanup complete on %s", host)
	return nil
}

// cleanupCommands returns the remote commands in teardown order. Container
// and image removal tolerate absence so the command stays idempotent; the
// directory removal and nginx restore run only when the probe found
// something to remove or restore.
func cleanupCommands(deployed, hasBackup bool) []string {
	commands := []string{
		fmt.Sprintf("docker stop %s 2>/dev/null || true", constants.ContainerName),
		fmt.Sprintf("docker rm %s 2>/dev/null || true", constants.ContainerName),
		fmt.Sprintf("docker rmi %s 2>/dev/null || true", constants.ImageTag),
	}
	if deployed {
		commands = append(commands, fmt.Sprintf("sudo rm -rf %s", constants.BasePath))
	}
	if hasBackup {
		commands = append(commands, nginx.RestoreCommands()...)
	}
	return commands
}
