package events

// Topic constants for domain events emitted by the platform.
const (
	TopicQuoteComputed      = "quote.computed"
	TopicSimulationRecorded = "simulation.recorded"
	TopicRulesReloaded      = "rules.reloaded"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicQuoteComputed,
		TopicSimulationRecorded,
		TopicRulesReloaded,
	}
}
