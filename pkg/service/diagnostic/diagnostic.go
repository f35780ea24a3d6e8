// Package diagnostic generates deterministic troubleshooting steps for
// tier-2 conversations. No LLM involved; the model requests steps and
// this package answers from a fixed keyword taxonomy.
package diagnostic

import "strings"

// Category identifies which diagnostic track matched the problem text
type Category string

const (
	CategoryConnection  Category = "connection"
	CategoryError       Category = "error"
	CategoryPerformance Category = "performance"
	CategoryGeneric     Category = "generic"
)

type track struct {
	category Category
	keywords []string
	steps    []string
}

var tracks = []track{
	{
		category: CategoryConnection,
		keywords: []string{"connect", "network", "offline", "wifi", "internet", "timeout", "unreachable", "dns"},
		steps: []string{
			"Check whether other devices on the same network can reach the internet.",
			"Restart the router or modem and wait until all status lights stabilize.",
			"Temporarily disable any VPN or proxy and retry the connection.",
			"Run a ping test against a well-known host and note any packet loss.",
			"If the problem persists, collect the exact time of failure for the network team.",
		},
	},
	{
		category: CategoryError,
		keywords: []string{"error", "crash", "exception", "freeze", "frozen", "stopped working", "won't start", "fails"},
		steps: []string{
			"Record the exact error message or code displayed.",
			"Restart the application and check whether the error reproduces.",
			"Check for a pending update and install it if available.",
			"Review the application log around the time of the failure.",
			"If the crash repeats, capture a screenshot of the error for the engineering team.",
		},
	},
	{
		category: CategoryPerformance,
		keywords: []string{"slow", "lag", "performance", "takes forever", "hangs", "loading", "latency"},
		steps: []string{
			"Close other applications and check whether responsiveness improves.",
			"Measure how long the slow operation takes and whether it is consistent.",
			"Clear the application cache and retry.",
			"Check available disk space and memory on the device.",
			"Note whether the slowness is constant or tied to specific times of day.",
		},
	},
}

var genericSteps = []string{
	"Describe exactly what you were doing when the problem occurred.",
	"Restart the application or device and check whether the problem persists.",
	"Note any recent changes such as updates, new hardware, or settings changes.",
	"Try reproducing the problem a second time and note any differences.",
}

// Suggest returns the diagnostic steps for the first matching keyword
// category, falling back to the generic track.
func Suggest(problem string) (Category, []string) {
	lowered := strings.ToLower(problem)
	for _, tr := range tracks {
		for _, kw := range tr.keywords {
			if strings.Contains(lowered, kw) {
				return tr.category, append([]string(nil), tr.steps...)
			}
		}
	}
	return CategoryGeneric, append([]string(nil), genericSteps...)
}
