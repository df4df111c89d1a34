package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dockship/dockship/internal/config"
	"github.com/dockship/dockship/internal/constants"
	"github.com/dockship/dockship/internal/deploy"
	"github.com/dockship/dockship/internal/gitrepo"
	"github.com/dockship/dockship/internal/logging"
	"github.com/dockship/dockship/internal/nginx"
	"github.com/dockship/dockship/internal/probe"
	"github.com/dockship/dockship/internal/provision"
	"github.com/dockship/dockship/internal/runner"
	"github.com/dockship/dockship/internal/security"
	"github.com/dockship/dockship/internal/ssh"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the application to the server",
	Long: `Deploys a Dockerized application to a remote server.

The deployment process:
1. Clones or updates the Git repository locally
2. Checks connectivity (ICMP ping, then SSH key authentication)
3. Provisions the server (Docker, Docker Compose, Nginx)
4. Syncs the working copy to the server with rsync
5. Builds the Docker image on the server and starts the container
6. Runs a health check against the application port
7. Configures Nginx as a reverse proxy on port 80

Missing parameters are prompted interactively. With --yes every parameter
must come from flags or the saved defaults.

CI/CD: set DOCKSHIP_GIT_TOKEN instead of --token for private repositories.`,
	Args: cobra.NoArgs,
	RunE: runDeployCmd,
}

var (
	deployRepo   string
	deployToken  string
	deployBranch string
	deployUser   string
	deployHost   string
	deployKey    string
	deployPort   int
)

func init() {
	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().StringVar(&deployRepo, "repo", "", "Git repository HTTPS URL (.git)")
	deployCmd.Flags().StringVar(&deployToken, "token", "", "Git access token (prefer DOCKSHIP_GIT_TOKEN)")
	deployCmd.Flags().StringVar(&deployBranch, "branch", "", "Branch to deploy (default: main)")
	deployCmd.Flags().StringVar(&deployUser, "user", "", "SSH user on the server")
	deployCmd.Flags().StringVar(&deployHost, "host", "", "Server IPv4 address")
	deployCmd.Flags().StringVar(&deployKey, "key", "", "SSH private key path (default: ~/.ssh/id_rsa)")
	deployCmd.Flags().IntVarP(&deployPort, "port", "p", 0, "Application port inside the container")
}

func runDeployCmd(cmd *cobra.Command, args []string) error {
	var err error
	runLog, err = logging.Open(logDir)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer runLog.Close()

	cfg, err := gatherDeployment()
	if err != nil {
		return err
	}

	PrintInfo("Deploying %s (branch %s) to %s@%s, app port %d",
		cfg.RepoURL, cfg.Branch, cfg.User, cfg.Host, cfg.AppPort)
	if cfg.Token != "" {
		PrintVerbose("Using git token %s", security.MaskSecret(cfg.Token))
	}
	PrintVerbose("Run log: %s", runLog.Path())

	// One interrupt cancels the run. In-flight remote commands are signalled
	// and nothing is rolled back; the next run re-establishes the state.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = executeDeploy(ctx, cfg)
	if ctx.Err() != nil {
		PrintError("Deployment interrupted")
		return ctx.Err()
	}
	if err != nil {
		PrintError("Deployment failed: %v", err)
		return err
	}

	if saveErr := config.SaveDefaults(config.FromDeployment(cfg)); saveErr != nil {
		PrintWarning("Could not save defaults: %v", saveErr)
	}

	PrintSuccess("Full deploy success")
	PrintInfo("Application: http://%s/ (proxied), http://%s:%d/ (direct)", cfg.Host, cfg.Host, cfg.AppPort)
	return nil
}

// gatherDeployment merges saved defaults, flags, and interactive prompts
// into a validated immutable parameter set. Flags win over saved defaults;
// prompts fill whatever is still missing.
func gatherDeployment() (*config.Deployment, error) {
	saved, err := config.LoadDefaults()
	if err != nil {
		PrintWarning("Could not read saved defaults: %v", err)
		saved = &config.Defaults{}
	}

	cfg := &config.Deployment{
		RepoURL: deployRepo,
		Token:   deployToken,
		Branch:  deployBranch,
		User:    deployUser,
		Host:    deployHost,
		KeyPath: deployKey,
		AppPort: deployPort,
	}

	mergeSavedDefaults(cfg, saved, os.Getenv("DOCKSHIP_GIT_TOKEN"))

	if IsInteractive() {
		if cfg.RepoURL == "" {
			cfg.RepoURL = PromptString("Git repository URL (https, ending in .git)", "")
		}
		if cfg.Token == "" {
			cfg.Token = PromptSecret("Git access token (required)")
		}
		if cfg.Branch == "" {
			cfg.Branch = PromptString("Branch", constants.DefaultBranch)
		}
		if cfg.User == "" {
			cfg.User = PromptString("SSH user", saved.User)
		}
		if cfg.Host == "" {
			cfg.Host = PromptString("Server IPv4 address", saved.Host)
		}
		if cfg.KeyPath == "" {
			cfg.KeyPath = PromptString("SSH key path", constants.DefaultKeyPath)
		}
		if cfg.AppPort == 0 {
			port := PromptString("Application port", "")
			fmt.Sscanf(port, "%d", &cfg.AppPort)
		}
	}

	cfg.ApplyDefaults()

	if errs := config.ValidateDeployment(cfg); errs.HasErrors() {
		return nil, errs
	}
	if err := security.ValidateBranch(cfg.Branch); err != nil {
		return nil, err
	}
	if err := security.ValidateUnixUser(cfg.User); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeSavedDefaults fills empty fields from the saved defaults and the
// token environment variable. Explicit flag values always win.
func mergeSavedDefaults(cfg *config.Deployment, saved *config.Defaults, envToken string) {
	if cfg.Token == "" {
		cfg.Token = envToken
	}
	if cfg.Branch == "" {
		cfg.Branch = saved.Branch
	}
	if cfg.User == "" {
		cfg.User = saved.User
	}
	if cfg.Host == "" {
		cfg.Host = saved.Host
	}
	if cfg.KeyPath == "" {
		cfg.KeyPath = saved.KeyPath
	}
}

func executeDeploy(ctx context.Context, cfg *config.Deployment) error {
	run := runner.New()

	// Local phase: working copy first, so a bad repository URL or a missing
	// Dockerfile fails before anything touches the server.
	syncer := gitrepo.NewSyncer(run, ".")
	syncer.SetLogf(PrintVerbose)

	PrintInfo("Syncing repository...")
	workDir, err := syncer.Sync(ctx, cfg.RepoURL, cfg.Branch, cfg.Token)
	if err != nil {
		return err
	}
	if err := gitrepo.VerifyContainerManifest(workDir); err != nil {
		return err
	}
	PrintSuccess("Working copy ready: %s", workDir)

	PrintInfo("Checking connectivity to %s...", cfg.Host)
	if err := probe.Ping(ctx, run, cfg.Host); err != nil {
		return err
	}
	if err := probe.SSHDryRun(ctx, cfg.Host, cfg.User, cfg.KeyPath); err != nil {
		return err
	}
	PrintSuccess("Host reachable, SSH key accepted")

	PrintInfo("Connecting to %s...", cfg.Host)
	client := ssh.NewClient(cfg.Host, cfg.User, constants.DefaultSSHPort, cfg.KeyPath)
	if err := client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()
	PrintSuccess("Connected")

	deployer := deploy.NewDeployer(client, run, cfg, workDir)
	deployer.SetLogf(PrintVerboseCommandf)
	deployer.SetStream(IsVerbose())

	pipeline := deploy.NewPipeline(PrintInfo)
	pipeline.Add("Provisioning server", func(ctx context.Context) error {
		return provision.Run(ctx, client, cfg.User, IsVerbose())
	})
	pipeline.Add("Preparing application directory", deployer.PrepareAppDir)
	pipeline.Add("Removing previous container", func(ctx context.Context) error {
		deployer.RemoveOldContainer(ctx)
		return nil
	})
	pipeline.Add("Syncing files to server", deployer.SyncFiles)
	pipeline.Add("Building Docker image", deployer.BuildImage)
	pipeline.Add("Starting container", deployer.RunContainer)
	pipeline.Add("Checking application health", func(ctx context.Context) error {
		if logs := deployer.RecentLogs(ctx); logs != "" {
			PrintInfo("Last container logs:\n%s", strings.TrimRight(logs, "\n"))
		}
		gate := deploy.NewHealthGate(client, cfg.Host, cfg.AppPort)
		return gate.Check(ctx)
	})
	pipeline.Add("Configuring Nginx reverse proxy", func(ctx context.Context) error {
		return applyNginx(ctx, client, cfg.AppPort)
	})

	if err := pipeline.Run(ctx); err != nil {
		return err
	}

	// Final report is read-only and never fails the run: the fatal health
	// gate already passed.
	PrintInfo("Final verification:")
	verifier := deploy.NewVerifier(client, cfg.Host, cfg.AppPort)
	for _, check := range verifier.Report(ctx) {
		if check.OK {
			PrintSuccess("%s: %s", check.Name, check.Detail)
		} else {
			PrintWarning("%s: %s", check.Name, check.Detail)
		}
	}
	return nil
}

func applyNginx(ctx context.Context, client ssh.Executor, port int) error {
	content, err := nginx.Generate(nginx.SiteConfig{Port: port})
	if err != nil {
		return err
	}

	if err := ssh.UploadContent(ctx, client, content, nginx.StagingPath); err != nil {
		return fmt.Errorf("nginx configuration failed: %w", err)
	}

	commands := nginx.ApplyCommands()
	for _, command := range commands {
		PrintVerboseCommandf("Running: %s", command)
	}
	if err := ssh.ExecMultiple(ctx, client, commands); err != nil {
		return fmt.Errorf("nginx configuration failed: %w", err)
	}
	return nil
}

// PrintVerboseCommandf adapts the Print helpers to the logf callback shape
// used by the deploy packages, masking secrets on the way.
func PrintVerboseCommandf(format string, args ...interface{}) {
	PrintVerbose("%s", security.SanitizeCommandForLog(fmt.Sprintf(format, args...)))
}
