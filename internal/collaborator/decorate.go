// Package collaborator provides decorators shared by every publish
// collaborator.
package collaborator

import (
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
)

// Decorate wraps a collaborator with logging, metrics and, when the rule-set
// asks for it, rate limiting.
func Decorate(rules *model.PlatformRuleSet, collaborator port.Collaborator) port.Collaborator {
	if rules.RateLimit != nil && rules.RateLimit.Interval > 0 {
		collaborator = NewRateLimitedCollaborator(collaborator, rules.RateLimit.Interval, rules.RateLimit.Burst)
	}

	collaborator = NewInstrumentedCollaborator(rules.ID, collaborator)
	collaborator = NewLoggedCollaborator(collaborator)

	return collaborator
}
