package constants

import "time"

// Base paths for dockship on the server
const (
	BasePath = "/opt/dockship"
	AppDir   = BasePath + "/app"
)

// Container configuration
const (
	ContainerName = "dockship-app"
	ImageTag      = "dockship-app"
)

// Nginx configuration paths on the server
const (
	NginxSitePath   = "/etc/nginx/sites-available/default"
	NginxBackupPath = NginxSitePath + ".bak"
)

// Connectivity probe timeouts
const (
	PingTimeout       = 5 * time.Second
	SSHConnectTimeout = 10 * time.Second
)

// Deployment defaults
const (
	DefaultBranch  = "main"
	DefaultKeyPath = "~/.ssh/id_rsa"
	DefaultSSHPort = 22

	// PreHealthSleep is the settle delay before the post-deploy health probe.
	PreHealthSleep = 5 * time.Second

	// HealthProbeTimeout bounds each HTTP health probe.
	HealthProbeTimeout = 10 * time.Second

	// LogTailLines is how many container log lines are dumped after a run.
	LogTailLines = 10
)
