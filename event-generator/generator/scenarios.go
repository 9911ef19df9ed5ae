package generator

import (
	"fmt"
	"sort"
)

// Scenario is a predefined generation run for demos and load tests.
type Scenario struct {
	Config      Config `json:"config"`
	Description string `json:"description"`
	UseCase     string `json:"use_case"`
	TotalEvents int    `json:"total_events"`
}

var allTypes = []string{"order", "inventory", "user_activity"}

var scenarios = map[string]Scenario{
	"light_demo": {
		Config:      Config{EventsPerMinute: 30, DurationMinutes: 5, EventTypes: allTypes, Environment: "dev"},
		Description: "Light demo - 30 events/min for 5 minutes",
		UseCase:     "Initial testing and basic demonstration",
		TotalEvents: 150,
	},
	"moderate_load": {
		Config:      Config{EventsPerMinute: 60, DurationMinutes: 10, EventTypes: allTypes, Environment: "dev"},
		Description: "Moderate load - 60 events/min for 10 minutes",
		UseCase:     "Standard demo with realistic load",
		TotalEvents: 600,
	},
	"heavy_load": {
		Config:      Config{EventsPerMinute: 120, DurationMinutes: 15, EventTypes: allTypes, Environment: "dev"},
		Description: "Heavy load - 120 events/min for 15 minutes",
		UseCase:     "Demonstrate pipeline handling higher throughput",
		TotalEvents: 1800,
	},
	"burst_test": {
		Config:      Config{EventsPerMinute: 300, DurationMinutes: 3, EventTypes: allTypes, Environment: "dev"},
		Description: "Burst test - 300 events/min for 3 minutes",
		UseCase:     "Test pipeline resilience with traffic spikes",
		TotalEvents: 900,
	},
	"sustained_demo": {
		Config:      Config{EventsPerMinute: 90, DurationMinutes: 30, EventTypes: allTypes, Environment: "dev"},
		Description: "Sustained demo - 90 events/min for 30 minutes",
		UseCase:     "Long-running demo for comprehensive testing",
		TotalEvents: 2700,
	},
	"stress_test": {
		Config:      Config{EventsPerMinute: 600, DurationMinutes: 10, EventTypes: allTypes, Environment: "dev"},
		Description: "Stress test - 600 events/min for 10 minutes",
		UseCase:     "Maximum load testing and performance validation",
		TotalEvents: 6000,
	},
	"quick_sample": {
		Config:      Config{EventsPerMinute: 12, DurationMinutes: 1, EventTypes: allTypes, Environment: "dev"},
		Description: "Quick sample - 12 events/min for 1 minute",
		UseCase:     "Very quick test to verify the pipeline is working",
		TotalEvents: 12,
	},
	"orders_only": {
		Config:      Config{EventsPerMinute: 60, DurationMinutes: 5, EventTypes: []string{"order"}, Environment: "dev"},
		Description: "Orders only - 60 events/min for 5 minutes",
		UseCase:     "Focus on order processing and analysis",
		TotalEvents: 300,
	},
	"inventory_only": {
		Config:      Config{EventsPerMinute: 60, DurationMinutes: 5, EventTypes: []string{"inventory"}, Environment: "dev"},
		Description: "Inventory only - 60 events/min for 5 minutes",
		UseCase:     "Focus on inventory tracking and warehouse analytics",
		TotalEvents: 300,
	},
	"user_activity_only": {
		Config:      Config{EventsPerMinute: 60, DurationMinutes: 5, EventTypes: []string{"user_activity"}, Environment: "dev"},
		Description: "User activity only - 60 events/min for 5 minutes",
		UseCase:     "Focus on user behavior and engagement analytics",
		TotalEvents: 300,
	},
}

// GetScenario looks up a predefined scenario by name.
func GetScenario(name string) (Scenario, error) {
	s, ok := scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario %q, available: %v", name, ScenarioNames())
	}
	return s, nil
}

// Scenarios returns all predefined scenarios.
func Scenarios() map[string]Scenario { return scenarios }

// ScenarioNames returns the scenario names in stable order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
