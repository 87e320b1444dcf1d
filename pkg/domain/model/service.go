package model

import "fmt"

// ServicePlan describes how the exporter service should be run. It is
// compared against the currently installed plan to decide whether the
// service needs a restart.
type ServicePlan struct {
	Summary string `yaml:"summary"`
	Command string `yaml:"command"`
	Startup string `yaml:"startup"`
}

// ExporterServicePlan returns the plan the agent installs for the
// exporter snap.
func ExporterServicePlan() ServicePlan {
	return ServicePlan{
		Summary: "prometheus-juju-exporter service",
		Command: "prometheus-juju-exporter",
		Startup: "enabled",
	}
}

// ScrapeTarget describes the Prometheus scrape target the unit exposes
// over the prometheus-scrape relation.
type ScrapeTarget struct {
	Port            int
	MetricsPath     string
	IntervalSeconds int
	TimeoutSeconds  int
}

// Interval renders the scrape interval the way Prometheus expects it.
func (t ScrapeTarget) Interval() string {
	return fmt.Sprintf("%ds", t.IntervalSeconds)
}

// Timeout renders the scrape timeout the way Prometheus expects it.
func (t ScrapeTarget) Timeout() string {
	return fmt.Sprintf("%ds", t.TimeoutSeconds)
}
