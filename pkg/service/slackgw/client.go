package slackgw

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

// pendingPrompt is one outstanding decision affordance
type pendingPrompt struct {
	owner types.UserID
	ch    chan types.Decision
}

// client implements Service over the Slack Web API
type client struct {
	api *slack.Client

	mu      sync.Mutex
	prompts map[string]*pendingPrompt
	imCache map[types.UserID]string
}

// Option is a functional option for client configuration
type Option func(*client)

// New creates a Slack gateway with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api:     slack.New(token),
		prompts: make(map[string]*pendingPrompt),
		imCache: make(map[types.UserID]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// openIM resolves (and caches) the DM channel for a person
func (c *client) openIM(ctx context.Context, person types.UserID) (string, error) {
	c.mu.Lock()
	if id, ok := c.imCache[person]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	channel, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{string(person)},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to open DM", goerr.V("person", person))
	}

	c.mu.Lock()
	c.imCache[person] = channel.ID
	c.mu.Unlock()
	return channel.ID, nil
}

// undeliverable reports whether a Slack error means the person simply cannot
// receive the message, as opposed to a transport or auth problem.
func undeliverable(err error) bool {
	msg := err.Error()
	for _, code := range []string{"cannot_dm_bot", "user_not_found", "user_disabled", "channel_not_found", "message_limit_exceeded"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}

func (c *client) Notify(ctx context.Context, person types.UserID, text string) (bool, error) {
	channelID, err := c.openIM(ctx, person)
	if err != nil {
		if undeliverable(err) {
			return false, nil
		}
		return false, err
	}

	if _, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		if undeliverable(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to post DM", goerr.V("person", person))
	}
	return true, nil
}

func (c *client) PresentDecision(ctx context.Context, person types.UserID, text string) (types.Decision, error) {
	channelID, err := c.openIM(ctx, person)
	if err != nil {
		return "", err
	}

	promptID := uuid.Must(uuid.NewV7()).String()
	prompt := &pendingPrompt{
		owner: person,
		ch:    make(chan types.Decision, 1),
	}

	c.mu.Lock()
	c.prompts[promptID] = prompt
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.prompts, promptID)
		c.mu.Unlock()
	}()

	blocks := buildDecisionBlocks(text, promptID)
	if _, _, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	); err != nil {
		return "", goerr.Wrap(err, "failed to post decision prompt", goerr.V("person", person))
	}

	select {
	case decision := <-prompt.ch:
		return decision, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *client) ResolvePrompt(promptID string, person types.UserID, decision types.Decision) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	prompt, ok := c.prompts[promptID]
	if !ok {
		// Prompt already finalized; late clicks are dropped
		return false
	}
	if prompt.owner != person {
		logging.Default().Warn("decision click from unexpected user",
			"prompt", promptID, "expected", prompt.owner, "actual", person)
		return false
	}

	select {
	case prompt.ch <- decision:
	default:
		// A decision already landed; first one wins
		return false
	}
	delete(c.prompts, promptID)
	return true
}

func (c *client) Announce(ctx context.Context, channelID string, text string) error {
	if channelID == "" {
		return nil
	}
	if _, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		return goerr.Wrap(err, "failed to post announcement", goerr.V("channel", channelID))
	}
	return nil
}

func (c *client) IsPresent(ctx context.Context, community types.CommunityID, person types.UserID) (bool, error) {
	var cursor string
	for {
		members, nextCursor, err := c.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
			ChannelID: string(community),
			Cursor:    cursor,
			Limit:     200,
		})
		if err != nil {
			return false, goerr.Wrap(err, "failed to list community members", goerr.V("community", community))
		}

		for _, m := range members {
			if m == string(person) {
				return true, nil
			}
		}

		if nextCursor == "" {
			return false, nil
		}
		cursor = nextCursor
	}
}

func (c *client) Remove(ctx context.Context, community types.CommunityID, person types.UserID, reason string) error {
	if err := c.api.KickUserFromConversationContext(ctx, string(community), string(person)); err != nil {
		return goerr.Wrap(err, "failed to remove user from community",
			goerr.V("community", community), goerr.V("person", person), goerr.V("reason", reason))
	}
	return nil
}

// buildDecisionBlocks constructs the Block Kit prompt with approve/deny
// buttons carrying the prompt ID as their value.
func buildDecisionBlocks(text, promptID string) []slack.Block {
	approve := slack.NewButtonBlockElement(ActionIDApprove, promptID,
		slack.NewTextBlockObject(slack.PlainTextType, "Yes, remove them", true, false))
	approve.Style = slack.StyleDanger

	deny := slack.NewButtonBlockElement(ActionIDDeny, promptID,
		slack.NewTextBlockObject(slack.PlainTextType, "No, keep them", true, false))

	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
			nil, nil,
		),
		slack.NewActionBlock(decisionBlockID, approve, deny),
	}
}
