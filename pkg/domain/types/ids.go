package types

// RequestID identifies a removal request. It is assigned when a draft is
// confirmed and doubles as the persistence key.
type RequestID string

func (x RequestID) String() string {
	return string(x)
}

// UserID is a chat platform user ID (e.g. Slack user ID)
type UserID string

func (x UserID) String() string {
	return string(x)
}

// CommunityID identifies one federated community (e.g. Slack channel ID)
type CommunityID string

func (x CommunityID) String() string {
	return string(x)
}
