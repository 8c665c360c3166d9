package protocol

// File and environment constants used throughout lbsim.
const (
	// DefaultLogPath is the text log written by a run.
	DefaultLogPath = "log.txt"

	// ConfigEnv names an environment variable holding a default config path.
	ConfigEnv = "LBSIM_CONFIG"
)

// Simulation defaults.
const (
	// DefaultArrivalProbability reproduces a one-in-five arrival chance per cycle.
	DefaultArrivalProbability = 0.2

	// DefaultScaleUpRatio adds a server once the queue exceeds servers*ratio.
	DefaultScaleUpRatio = 120

	// DefaultScaleDownRatio removes a server once the queue drops below servers*ratio.
	DefaultScaleDownRatio = 50

	// DefaultInitialPerServer is how many requests per server FillInitialQueue seeds.
	DefaultInitialPerServer = 100

	// MinDuration and MaxDuration bound generated request durations (inclusive).
	MinDuration = 1
	MaxDuration = 10
)

// Log line prefixes written by the text sink.
const (
	PrefixBlocked = "[!] Blocked request from "
	PrefixAdded   = "[+] Added server. Total servers: "
	PrefixRemoved = "[-] Removed server. Total servers: "
)
