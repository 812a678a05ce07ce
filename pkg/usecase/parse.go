package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

var (
	reTargetName  = regexp.MustCompile(`(?im)^\s*username:[ \t]*(.+?)\s*$`)
	reTargetID    = regexp.MustCompile(`(?im)^\s*user id:[ \t]*(\S+)\s*$`)
	reProfileName = regexp.MustCompile(`(?im)^\s*profile name(?:\s*\(if applicable\))?:[ \t]*(.+?)\s*$`)
	reProfileUUID = regexp.MustCompile(`(?im)^\s*profile uuid(?:\s*\(if applicable\))?:[ \t]*(.+?)\s*$`)
	// Reason keeps everything after the label, including later lines
	reReason = regexp.MustCompile(`(?is)\breason:\s*(.+)`)
)

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseRequest extracts a draft removal request from free-form labeled
// text. Username, User ID and Reason are required; profile identifiers are
// optional and a missing profile UUID is resolved from the profile name
// when a resolver is configured. Resolver failures never fail the parse.
func (uc *UseCases) ParseRequest(ctx context.Context, text string) (*model.RemovalRequest, error) {
	name := firstMatch(reTargetName, text)
	id := firstMatch(reTargetID, text)
	reason := firstMatch(reReason, text)

	var missing []string
	if name == "" {
		missing = append(missing, "username")
	}
	if id == "" {
		missing = append(missing, "user id")
	}
	if reason == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return nil, &ParseError{Missing: missing}
	}

	req := &model.RemovalRequest{
		Target: model.Target{
			ID:          types.UserID(id),
			DisplayName: name,
		},
		Reason: reason,
		Status: types.RequestStatusDraft,
	}

	profileName := firstMatch(reProfileName, text)
	profileUUID := firstMatch(reProfileUUID, text)
	if profileName != "" {
		req.SetAuxiliaryID(model.AuxProfileName, profileName)
	}
	if profileUUID == "" && profileName != "" && uc.resolver != nil {
		resolved, err := uc.resolver.ResolveUUID(ctx, profileName)
		if err != nil {
			logging.From(ctx).Warn("failed to resolve profile UUID",
				"profileName", profileName, "error", err)
		} else {
			profileUUID = resolved
		}
	}
	if profileUUID != "" {
		req.SetAuxiliaryID(model.AuxProfileUUID, profileUUID)
	}

	return req, nil
}
