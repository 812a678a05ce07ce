package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/service/slackgw"
	"github.com/fedmod/ostracon/pkg/utils/errutil"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

// SlackInteractionHandler handles Slack interactive component payloads
// (the approve/deny button clicks on owner decision prompts)
type SlackInteractionHandler struct {
	gateway slackgw.Service
}

// NewSlackInteractionHandler creates a new Slack interaction handler
func NewSlackInteractionHandler(gateway slackgw.Service) *SlackInteractionHandler {
	return &SlackInteractionHandler{gateway: gateway}
}

// ServeHTTP handles Slack interaction webhook requests
func (h *SlackInteractionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Slack sends interaction payloads as application/x-www-form-urlencoded
	// with a "payload" field containing JSON
	payload := r.FormValue("payload")
	if payload == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("missing payload field in interaction request"), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse interaction payload"), http.StatusBadRequest)
		return
	}

	// Only handle block_actions (button clicks)
	if callback.Type != slack.InteractionTypeBlockActions {
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, action := range callback.ActionCallback.BlockActions {
		var decision types.Decision
		switch action.ActionID {
		case slackgw.ActionIDApprove:
			decision = types.DecisionApprove
		case slackgw.ActionIDDeny:
			decision = types.DecisionDeny
		default:
			continue
		}

		promptID := action.Value
		person := types.UserID(callback.User.ID)
		if !h.gateway.ResolvePrompt(promptID, person, decision) {
			// Late click on an already finalized prompt, or a click
			// from someone other than the asked owner
			logging.From(ctx).Info("dropped decision click",
				"prompt", promptID,
				"person", person,
				"decision", decision,
			)
		}
	}

	w.WriteHeader(http.StatusOK)
}
