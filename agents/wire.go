package agents

import (
	"time"

	"github.com/ravencare/ravencare/ai/chat"
	"github.com/ravencare/ravencare/config"
	"github.com/ravencare/ravencare/triage"
)

// FromConfig builds the three pipeline stages from configuration. With
// ai.offline set, the rule-based stages are returned and no network clients
// are created.
func FromConfig(ai config.AI) (triage.SpecialtyMapper, triage.UrgencyAssessor, triage.Evaluator) {
	if ai.Offline {
		return OfflineMapper{}, OfflineAssessor{}, OfflineEvaluator{}
	}

	return NewMapper(clientFor(ai.Mapper)),
		NewUrgencyAgent(clientFor(ai.Urgency)),
		NewEvaluatorAgent(clientFor(ai.Evaluator))
}

func clientFor(agent config.Agent) *chat.Client {
	return chat.NewClient(chat.Config{
		BaseURL:           agent.BaseURL,
		APIKey:            agent.APIKey,
		Model:             agent.Model,
		Temperature:       agent.Temperature,
		MaxTokens:         agent.MaxTokens,
		Timeout:           time.Duration(agent.TimeoutSeconds) * time.Second,
		RequestsPerMinute: agent.RequestsPerMinute,
	})
}
