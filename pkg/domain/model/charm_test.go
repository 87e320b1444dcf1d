package model_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func writeCharmConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write charm config: %v", err)
	}
	return path
}

func TestLoadCharmConfig(t *testing.T) {
	path := writeCharmConfig(t, `
customer: example-customer
cloud-name: example-cloud
controller-url: 10.0.0.1:17070
juju-user: monitor
juju-password: s3cret
scrape-interval: 5
scrape-port: 9275
scrape-timeout: 30
virtual-macs: "52:54:00"
match-interfaces: ".*"
debug: true
`)

	cfg, err := model.LoadCharmConfig(path)
	gt.NoError(t, err)
	gt.Value(t, cfg.Customer).Equal("example-customer")
	gt.Value(t, cfg.CloudName).Equal("example-cloud")
	gt.Value(t, cfg.ScrapePort).Equal(9275)
	gt.Value(t, cfg.ScrapeInterval).Equal(5)
	gt.Value(t, cfg.ScrapeTimeout).Equal(30)
	gt.Value(t, cfg.Debug).Equal(true)
}

func TestLoadCharmConfigErrors(t *testing.T) {
	_, err := model.LoadCharmConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	gt.Error(t, err)

	path := writeCharmConfig(t, "customer: [broken")
	_, err = model.LoadCharmConfig(path)
	gt.Error(t, err)
}

func TestExplicitCACert(t *testing.T) {
	const cert = "-----BEGIN CERTIFICATE-----\nabc\n-----END CERTIFICATE-----"

	tests := []struct {
		name    string
		value   string
		want    string
		wantSet bool
		wantErr bool
	}{
		{
			name:    "valid base64",
			value:   base64.StdEncoding.EncodeToString([]byte(cert)),
			want:    cert,
			wantSet: true,
		},
		{
			name:    "unset",
			value:   "",
			wantSet: false,
		},
		{
			name:    "invalid base64",
			value:   "not-valid-base64!!!",
			wantSet: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &model.CharmConfig{ControllerCACert: tt.value}

			got, set, err := cfg.ExplicitCACert()
			gt.Value(t, set).Equal(tt.wantSet)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestCharmifyConfigError(t *testing.T) {
	msg := "following config options are missing: customer.name, juju.controller_endpoint, detection.virt_macs"
	got := model.CharmifyConfigError(msg)

	gt.String(t, got).Contains("customer")
	gt.String(t, got).Contains("controller-url")
	gt.String(t, got).Contains("virtual-macs")
	if strings.Contains(got, "juju.controller_endpoint") || strings.Contains(got, "detection.virt_macs") {
		t.Errorf("snap keys leaked into operator-facing message: %q", got)
	}
}
