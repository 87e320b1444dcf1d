package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// ExporterConfig holds the flat, charm-level values required to configure
// the exporter service. Render converts it into the nested document the
// snap consumes.
type ExporterConfig struct {
	Debug           bool
	Customer        string
	Cloud           string
	Controller      string
	CACert          string
	User            string
	Password        string `masq:"secret"`
	Interval        int
	Port            int
	MACPrefixes     string
	MatchInterfaces string
}

// ControllerEndpoints renders the value for the 'juju.controller_endpoint'
// option. The charm option is a comma-separated string; the snap accepts a
// list of endpoints.
func (c ExporterConfig) ControllerEndpoints() []string {
	if c.Controller == "" {
		return nil
	}
	return strings.Split(c.Controller, ",")
}

// Render returns the snap config document for this exporter configuration.
func (c ExporterConfig) Render() SnapConfig {
	virtMACs := []string{}
	if c.MACPrefixes != "" {
		virtMACs = strings.Split(c.MACPrefixes, ",")
	}

	matchInterfaces := c.MatchInterfaces
	if matchInterfaces == "" {
		matchInterfaces = ".*"
	}

	return SnapConfig{
		Debug: c.Debug,
		Customer: CustomerSection{
			Name:      c.Customer,
			CloudName: c.Cloud,
		},
		Juju: JujuSection{
			ControllerEndpoint: c.ControllerEndpoints(),
			ControllerCACert:   c.CACert,
			Username:           c.User,
			Password:           c.Password,
		},
		Exporter: ExporterSection{
			CollectInterval: c.Interval,
			Port:            c.Port,
		},
		Detection: DetectionSection{
			VirtMACs:        virtMACs,
			MatchInterfaces: matchInterfaces,
		},
	}
}

// SnapConfig is the nested configuration document written to the exporter
// snap's config file.
type SnapConfig struct {
	Debug     bool             `yaml:"debug"`
	Customer  CustomerSection  `yaml:"customer"`
	Juju      JujuSection      `yaml:"juju"`
	Exporter  ExporterSection  `yaml:"exporter"`
	Detection DetectionSection `yaml:"detection"`
}

type CustomerSection struct {
	Name      string `yaml:"name"`
	CloudName string `yaml:"cloud_name"`
}

type JujuSection struct {
	ControllerEndpoint []string `yaml:"controller_endpoint"`
	ControllerCACert   string   `yaml:"controller_cacert"`
	Username           string   `yaml:"username"`
	Password           string   `yaml:"password" masq:"secret"`
}

type ExporterSection struct {
	CollectInterval int `yaml:"collect_interval"`
	Port            int `yaml:"port"`
}

type DetectionSection struct {
	VirtMACs        []string `yaml:"virt_macs"`
	MatchInterfaces string   `yaml:"match_interfaces"`
}

// Marshal serializes the config document as YAML.
func (c SnapConfig) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal exporter config")
	}
	return data, nil
}

// Hash returns the SHA-256 digest of the serialized config document. It is
// used to decide whether a new configuration needs to be applied.
func (c SnapConfig) Hash() (string, error) {
	data, err := c.Marshal()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ConfigError describes problems with an exporter configuration. All
// problems found during validation are accumulated into a single error.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid exporter configuration: " + strings.Join(e.Problems, "; ")
}

// requiredOption ties a snap config key to a presence check. The key names
// match the snap's own configuration schema so that errors can be mapped
// back to charm option names.
type requiredOption struct {
	key     string
	present func(SnapConfig) bool
}

var requiredOptions = []requiredOption{
	{"customer.name", func(c SnapConfig) bool { return c.Customer.Name != "" }},
	{"customer.cloud_name", func(c SnapConfig) bool { return c.Customer.CloudName != "" }},
	{"juju.controller_endpoint", func(c SnapConfig) bool { return len(c.Juju.ControllerEndpoint) > 0 }},
	{"juju.controller_cacert", func(c SnapConfig) bool { return c.Juju.ControllerCACert != "" }},
	{"juju.username", func(c SnapConfig) bool { return c.Juju.Username != "" }},
	{"juju.password", func(c SnapConfig) bool { return c.Juju.Password != "" }},
	{"exporter.port", func(c SnapConfig) bool { return c.Exporter.Port != 0 }},
	{"exporter.collect_interval", func(c SnapConfig) bool { return c.Exporter.CollectInterval != 0 }},
	{"detection.virt_macs", func(c SnapConfig) bool { return len(c.Detection.VirtMACs) > 0 }},
	{"detection.match_interfaces", func(c SnapConfig) bool { return c.Detection.MatchInterfaces != "" }},
}

// Validate checks that the config has every option the snap requires to
// run, and that option values are sane where that is feasible. It returns
// a *ConfigError listing every problem found.
func (c SnapConfig) Validate() error {
	var problems []string

	var missing []string
	for _, opt := range requiredOptions {
		if !opt.present(c) {
			missing = append(missing, opt.key)
		}
	}
	if len(missing) > 0 {
		problems = append(problems, "following config options are missing: "+strings.Join(missing, ", "))
	}

	if port := c.Exporter.Port; port != 0 && (port < 0 || port >= 65535) {
		problems = append(problems, fmt.Sprintf("port %d is not a valid port number", port))
	}

	if interval := c.Exporter.CollectInterval; interval != 0 && interval < 1 {
		problems = append(problems, "configuration option 'exporter.collect_interval' must be a positive number")
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
