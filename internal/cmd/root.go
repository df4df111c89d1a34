package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dockship/dockship/internal/logging"
	"github.com/dockship/dockship/internal/security"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	verbose bool
	yesFlag bool // CI/CD: skip confirmations
	logDir  string

	// runLog mirrors every console message into the per-day log file. It is
	// nil until a command opens it; the Print helpers tolerate nil.
	runLog *logging.RunLog
)

var rootCmd = &cobra.Command{
	Use:   "dockship",
	Short: "Deploy Dockerized applications to a remote Linux server",
	Long: `Dockship clones a Git repository, provisions a remote server over SSH
(Docker, Docker Compose, Nginx), builds the application image on the
server, runs it, and fronts it with an Nginx reverse proxy.

Quick start:
  dockship deploy            # Interactive deployment
  dockship deploy --yes \
    --repo https://github.com/user/app.git \
    --host 203.0.113.10 --user deploy --port 3000

Commands:
  deploy        Deploy the application to the server
  cleanup       Remove the deployed application from the server

CI/CD Environment Variables:
  DOCKSHIP_GIT_TOKEN           Git access token for private repositories
  DOCKSHIP_SSH_KEY             SSH private key content
  DOCKSHIP_KNOWN_HOSTS         SSH known_hosts content
  DOCKSHIP_SKIP_HOST_KEY_CHECK Skip host key verification (true/false)`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed logs")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Skip prompts (CI/CD mode)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for run logs (default: current directory)")

	rootCmd.SetVersionTemplate(`Dockship {{.Version}}
`)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// IsYesMode returns true if --yes flag is set (CI/CD mode)
func IsYesMode() bool {
	return yesFlag
}

// PrintError prints a formatted error message
func PrintError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "❌ "+msg+"\n", args...)
	runLog.Errorf(msg, args...)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	fmt.Printf("✅ "+msg+"\n", args...)
	runLog.Infof(msg, args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	fmt.Printf("ℹ️  "+msg+"\n", args...)
	runLog.Infof(msg, args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	fmt.Printf("⚠️  "+msg+"\n", args...)
	runLog.Warnf(msg, args...)
}

// PrintVerbose prints a message only in verbose mode. The log file gets it
// either way.
func PrintVerbose(msg string, args ...interface{}) {
	if verbose {
		fmt.Printf("   "+msg+"\n", args...)
	}
	runLog.Debugf(msg, args...)
}

// PrintVerboseCommand prints a command in verbose mode with sensitive values masked
func PrintVerboseCommand(command string) {
	PrintVerbose("Running: %s", security.SanitizeCommandForLog(command))
}
