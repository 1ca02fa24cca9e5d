// Package intent classifies inbound messages for routing: is this a
// scheduling-domain request, and if so, does it create or list meetings?
// The classification is advisory; an in-progress dialogue always wins.
package intent

import "regexp"

// Action tags a scheduling-domain message.
type Action string

const (
	ActionCreate Action = "create"
	ActionList   Action = "list"
)

var (
	schedulingVerbRe = regexp.MustCompile(`(?i)\b(schedule|set\s*up|book|arrange|plan)\b`)
	listingVerbRe    = regexp.MustCompile(`(?i)\b(list|show|view|get)\b`)
	domainNounRe     = regexp.MustCompile(`(?i)\b(meeting|call|appointment)\b`)
	listTargetRe     = regexp.MustCompile(`(?i)\b(list|show|view|get)\b.*\b(meetings|schedule|calendar)\b`)
)

// IsSchedulingRequest reports whether the message belongs to the scheduling
// domain: a scheduling verb, a listing verb, or a meeting noun.
func IsSchedulingRequest(message string) bool {
	return schedulingVerbRe.MatchString(message) ||
		listingVerbRe.MatchString(message) ||
		domainNounRe.MatchString(message)
}

// DetermineAction tags a scheduling-domain message. List requires a listing
// verb followed by a scheduling noun within the same message; everything else
// is a create.
func DetermineAction(message string) Action {
	if listTargetRe.MatchString(message) {
		return ActionList
	}
	return ActionCreate
}
