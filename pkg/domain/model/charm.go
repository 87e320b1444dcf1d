package model

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// CharmConfig holds the operator-facing configuration options of the unit.
// Option names follow the charm's config schema, which differs from the
// snap's own config keys (see SnapKeyByCharmOption).
type CharmConfig struct {
	Debug            bool   `yaml:"debug"`
	Customer         string `yaml:"customer"`
	CloudName        string `yaml:"cloud-name"`
	ControllerURL    string `yaml:"controller-url"`
	ControllerCACert string `yaml:"controller-ca-cert"`
	JujuUser         string `yaml:"juju-user"`
	JujuPassword     string `yaml:"juju-password" masq:"secret"`
	ScrapeInterval   int    `yaml:"scrape-interval"`
	ScrapePort       int    `yaml:"scrape-port"`
	ScrapeTimeout    int    `yaml:"scrape-timeout"`
	VirtualMACs      string `yaml:"virtual-macs"`
	MatchInterfaces  string `yaml:"match-interfaces"`
}

// SnapKeyByCharmOption maps charm configuration options to the snap config
// keys they feed.
var SnapKeyByCharmOption = map[string]string{
	"debug":            "debug",
	"customer":         "customer.name",
	"cloud-name":       "customer.cloud_name",
	"controller-url":   "juju.controller_endpoint",
	"juju-user":        "juju.username",
	"juju-password":    "juju.password",
	"scrape-interval":  "exporter.collect_interval",
	"scrape-port":      "exporter.port",
	"virtual-macs":     "detection.virt_macs",
	"match-interfaces": "detection.match_interfaces",
}

// LoadCharmConfig reads a charm configuration file.
func LoadCharmConfig(path string) (*CharmConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read charm config", goerr.V("path", path))
	}

	var cfg CharmConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse charm config", goerr.V("path", path))
	}

	return &cfg, nil
}

// ExplicitCACert returns the CA certificate configured directly via the
// 'controller-ca-cert' option. The option carries base64-encoded data; bad
// data is an error rather than a silent fallback. The second return value
// reports whether the option was set at all.
func (c *CharmConfig) ExplicitCACert() (string, bool, error) {
	if c.ControllerCACert == "" {
		return "", false, nil
	}

	decoded, err := base64.StdEncoding.Strict().DecodeString(c.ControllerCACert)
	if err != nil {
		return "", true, goerr.Wrap(err, "invalid base64 value in 'controller-ca-cert' option")
	}
	return string(decoded), true, nil
}

// ExporterConfig builds the exporter service configuration from the charm
// options and a resolved controller CA certificate.
func (c *CharmConfig) ExporterConfig(caCert string) ExporterConfig {
	return ExporterConfig{
		Debug:           c.Debug,
		Customer:        c.Customer,
		Cloud:           c.CloudName,
		Controller:      c.ControllerURL,
		CACert:          caCert,
		User:            c.JujuUser,
		Password:        c.JujuPassword,
		Interval:        c.ScrapeInterval,
		Port:            c.ScrapePort,
		MACPrefixes:     c.VirtualMACs,
		MatchInterfaces: c.MatchInterfaces,
	}
}

// CharmifyConfigError rewrites snap config keys in a validation error
// message into the charm option names operators actually set.
func CharmifyConfigError(msg string) string {
	for charmOption, snapKey := range SnapKeyByCharmOption {
		if charmOption == snapKey {
			continue
		}
		msg = strings.ReplaceAll(msg, snapKey, charmOption)
	}
	return msg
}
