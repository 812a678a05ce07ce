package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/types"
)

// Community is one independently owned group in the federation. Its owner is
// the only person with authority to approve removal from it.
type Community struct {
	ID      types.CommunityID
	Name    string
	OwnerID types.UserID
}

// Federation is the configured roster of communities the service negotiates
// with, plus an optional log channel for operator-facing summaries.
type Federation struct {
	communities  []Community
	logChannelID string
}

// NewFederation builds a roster from the configured communities
func NewFederation(communities []Community, logChannelID string) (*Federation, error) {
	seen := make(map[types.CommunityID]struct{}, len(communities))
	for _, c := range communities {
		if c.ID == "" {
			return nil, goerr.New("community ID is required", goerr.V("name", c.Name))
		}
		if c.OwnerID == "" {
			return nil, goerr.New("community owner is required", goerr.V("community", c.ID))
		}
		if _, ok := seen[c.ID]; ok {
			return nil, goerr.New("duplicate community ID", goerr.V("community", c.ID))
		}
		seen[c.ID] = struct{}{}
	}

	return &Federation{
		communities:  communities,
		logChannelID: logChannelID,
	}, nil
}

// Communities returns all configured communities
func (f *Federation) Communities() []Community {
	return f.communities
}

// Community looks up a community by ID
func (f *Federation) Community(id types.CommunityID) (Community, bool) {
	for _, c := range f.communities {
		if c.ID == id {
			return c, true
		}
	}
	return Community{}, false
}

// LogChannelID returns the configured log channel, empty when unset
func (f *Federation) LogChannelID() string {
	return f.logChannelID
}
