package model

import "github.com/fedmod/ostracon/pkg/domain/types"

// BlacklistEntry is a record in the external blacklist registry
type BlacklistEntry struct {
	TargetID     types.UserID      `json:"targetId"`
	DisplayName  string            `json:"displayName"`
	Reason       string            `json:"reason"`
	AuxiliaryIDs map[string]string `json:"auxiliaryIdentifiers,omitempty"`
}
