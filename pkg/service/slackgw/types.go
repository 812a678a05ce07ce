package slackgw

import (
	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

// Block Kit action IDs for the decision buttons. The interaction webhook
// routes clicks with these IDs back into ResolvePrompt.
const (
	ActionIDApprove = "ostracon_approve"
	ActionIDDeny    = "ostracon_deny"

	decisionBlockID = "ostracon_decision"
)

// Service is the Slack-backed federation gateway: it delivers notifications
// and decision affordances, answers membership questions and performs kicks.
type Service interface {
	interfaces.NotificationGateway
	interfaces.MembershipLookup
	interfaces.CommunityActions

	// ResolvePrompt delivers a button click to the pending decision
	// prompt. It returns false when the prompt is unknown (already
	// finalized) or the clicker is not the addressed owner.
	ResolvePrompt(promptID string, person types.UserID, decision types.Decision) bool
}
