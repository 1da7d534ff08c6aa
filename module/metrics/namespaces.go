package metrics

// Prometheus metric namespaces
const (
	namespaceSimulation = "omsim"
)

// simulation subsystems
const (
	subsystemDriver = "driver"
	subsystemEngine = "engine"
)
