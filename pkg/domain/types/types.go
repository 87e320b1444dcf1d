package types

// Version is the agent version, overridden at build time via -ldflags
var Version = "0.1.0"

// ServiceName is the name the agent reports in health checks and logs
const ServiceName = "pje-agent"

// SnapName is the snap package managed by this agent
const SnapName = "prometheus-juju-exporter"
