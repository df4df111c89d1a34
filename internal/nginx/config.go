// Package nginx generates the reverse-proxy site configuration and the
// remote commands that install, validate, and reload it.
package nginx

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/dockship/dockship/internal/constants"
)

// StagingPath is where the rendered site config lands before sudo installs
// it: the deployment user cannot write under /etc/nginx directly.
const StagingPath = "/tmp/dockship-nginx-default.conf"

// SiteConfig parameterizes the generated default site. Only the upstream
// port varies; everything else is fixed by contract.
type SiteConfig struct {
	Port int
}

// siteTemplate forwards port 80 to the application's internal port with
// WebSocket-compatible upgrade headers. TLS stays a commented placeholder:
// certificate lifecycle is out of scope.
const siteTemplate = `server {
    listen 80 default_server;
    listen [::]:80 default_server;

    location / {
        proxy_pass http://localhost:{{ .Port }};
        proxy_http_version 1.1;
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection 'upgrade';
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_cache_bypass $http_upgrade;
    }

    # To enable TLS, install a certificate and uncomment:
    # listen 443 ssl default_server;
    # ssl_certificate     /etc/ssl/certs/app.crt;
    # ssl_certificate_key /etc/ssl/private/app.key;
}
`

// Generate renders the default site configuration for the given upstream port.
func Generate(site SiteConfig) (string, error) {
	t, err := template.New("site").Parse(siteTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, site); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// BackupCommand preserves the existing site config before it is overwritten.
// A single backup slot is kept: if a backup already exists from an earlier
// run it is left alone, so the backup always reflects the pre-dockship state.
func BackupCommand() string {
	return fmt.Sprintf("test -f %s && test ! -f %s && sudo cp %s %s || true",
		constants.NginxSitePath, constants.NginxBackupPath,
		constants.NginxSitePath, constants.NginxBackupPath)
}

// ApplyCommands returns the remote commands that back up the previous config,
// install the staged one, validate syntax, and gracefully reload. The caller
// uploads the rendered config to StagingPath first.
func ApplyCommands() []string {
	return []string{
		BackupCommand(),
		fmt.Sprintf("sudo install -m 644 %s %s", StagingPath, constants.NginxSitePath),
		fmt.Sprintf("sudo ln -sf %s /etc/nginx/sites-enabled/default", constants.NginxSitePath),
		"sudo nginx -t",
		"sudo systemctl reload nginx",
		fmt.Sprintf("rm -f %s", StagingPath),
	}
}

// RestoreCommands returns the remote commands that put the backed-up site
// config back and reload. Used by cleanup; tolerates a missing backup.
func RestoreCommands() []string {
	return []string{
		fmt.Sprintf("test -f %s && sudo cp %s %s || true",
			constants.NginxBackupPath, constants.NginxBackupPath, constants.NginxSitePath),
		"sudo nginx -t && sudo systemctl reload nginx || true",
	}
}
