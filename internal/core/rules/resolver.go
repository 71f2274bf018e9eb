// Package rules is the decision core of the purchase order workflow: the
// threshold resolver that maps an amount to a required approver role and
// SLA, the role comparator, and the lifecycle guard governing status
// transitions. Everything here is pure - callers own all side effects.
package rules

import (
	"dna-erp-po/internal/core/dna"
	"dna-erp-po/internal/core/domain"
)

// Resolve scans the bands in ascending level order and returns the first
// one whose upper bound covers the amount. The comparison is a strict
// less-than: an amount exactly equal to a band's maxAmount is NOT covered
// by that band and escalates to the next one.
//
// When no band matches (amount at or above every finite maxAmount and no
// unbounded band configured - a misconfiguration), the last band is
// returned rather than an error. Ruleset.Validate reports that shape at
// save time; the request path degrades leniently.
func Resolve(amount float64, thresholds []dna.ApprovalThreshold) dna.ApprovalThreshold {
	if len(thresholds) == 0 {
		// Nothing configured at all: require the top role so nothing
		// slips through unapproved.
		return dna.ApprovalThreshold{Role: domain.RoleCEO, SLAHours: 72}
	}

	for _, t := range thresholds {
		if t.MaxAmount == nil || amount < *t.MaxAmount {
			return t
		}
	}

	return thresholds[len(thresholds)-1]
}

// RequiredRole returns the minimum role able to approve the amount
func RequiredRole(amount float64, thresholds []dna.ApprovalThreshold) domain.Role {
	return Resolve(amount, thresholds).Role
}

// SLAHours returns the resolution SLA, in hours, for the amount
func SLAHours(amount float64, thresholds []dna.ApprovalThreshold) int {
	return Resolve(amount, thresholds).SLAHours
}

// CanApprove reports whether an actor with the given role may approve or
// reject an order of the given amount. Both roles are compared by ordinal
// rank; unknown role strings rank as STAFF rather than failing.
func CanApprove(actorRole domain.Role, amount float64, thresholds []dna.ApprovalThreshold) bool {
	required := RequiredRole(amount, thresholds)
	return actorRole.AtLeast(required)
}
