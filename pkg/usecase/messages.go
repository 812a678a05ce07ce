package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

// communityName returns the configured display name, falling back to the ID
func (uc *UseCases) communityName(id types.CommunityID) string {
	if c, ok := uc.federation.Community(id); ok && c.Name != "" {
		return c.Name
	}
	return string(id)
}

func requestSummary(req *model.RemovalRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (`%s`)\n", req.Target.DisplayName, req.Target.ID)
	fmt.Fprintf(&b, "Reason: %s", req.Reason)
	for key, value := range req.AuxiliaryIDs {
		fmt.Fprintf(&b, "\n%s: %s", key, value)
	}
	return b.String()
}

func ownerPrompt(req *model.RemovalRequest, communityName string, deadline time.Time) string {
	return fmt.Sprintf(
		"A removal request was filed for a member of *%s*:\n\n%s\n\nShould they be removed from your community? If you do not respond within %s, they will be kept.",
		communityName, requestSummary(req), formatDuration(time.Until(deadline)))
}

func ownerReminder(req *model.RemovalRequest, communityName string, deadline time.Time) string {
	return fmt.Sprintf(
		"Reminder: the removal request for *%s* (`%s`) in *%s* is still waiting for your decision. It expires %s.",
		req.Target.DisplayName, req.Target.ID, communityName, deadline.UTC().Format("2006-01-02 15:04 UTC"))
}

func ownerAcknowledgement(req *model.RemovalRequest, communityName string, approved bool) string {
	if approved {
		return fmt.Sprintf("Understood. *%s* will be removed from *%s*.", req.Target.DisplayName, communityName)
	}
	return fmt.Sprintf("Understood. *%s* stays in *%s*.", req.Target.DisplayName, communityName)
}

func ownerTimeoutNotice(req *model.RemovalRequest, communityName string) string {
	return fmt.Sprintf(
		"The removal request for *%s* (`%s`) in *%s* received no decision in time. They will not be removed.",
		req.Target.DisplayName, req.Target.ID, communityName)
}

func ownerCancellationNotice(req *model.RemovalRequest, communityName string) string {
	return fmt.Sprintf(
		"The removal request for *%s* (`%s`) was cancelled. No action is needed for *%s*.",
		req.Target.DisplayName, req.Target.ID, communityName)
}

// targetNotice summarizes the outcome for the removed person
func targetNotice(req *model.RemovalRequest, removedFrom []string) string {
	if len(removedFrom) == 0 {
		return fmt.Sprintf(
			"A removal request naming you was reviewed. No community chose to remove you.\nReason given: %s",
			req.Reason)
	}
	return fmt.Sprintf(
		"You have been removed from the following communities:\n%s\nReason: %s",
		"- "+strings.Join(removedFrom, "\n- "), req.Reason)
}

func completionSummary(req *model.RemovalRequest, names func(types.CommunityID) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Removal request `%s` for *%s* (`%s`) completed.",
		req.ID, req.Target.DisplayName, req.Target.ID)
	for _, o := range req.Outcomes {
		fmt.Fprintf(&b, "\n- %s: %s", names(o.CommunityID), o.State)
		if o.FailureReason != "" {
			fmt.Fprintf(&b, " (%s)", o.FailureReason)
		}
	}
	return b.String()
}

func forceSummary(target model.Target, reason string, result *ForceResult, names func(types.CommunityID) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (`%s`) was force-blacklisted.\nReason: %s", target.DisplayName, target.ID, reason)
	for _, id := range result.RemovedFrom {
		fmt.Fprintf(&b, "\n- removed from %s", names(id))
	}
	for id, msg := range result.Failed {
		fmt.Fprintf(&b, "\n- removal from %s failed: %s", names(id), msg)
	}
	return b.String()
}

func cancellationSummary(req *model.RemovalRequest) string {
	return fmt.Sprintf("Removal request `%s` for *%s* (`%s`) was cancelled. No removals were performed.",
		req.ID, req.Target.DisplayName, req.Target.ID)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}
