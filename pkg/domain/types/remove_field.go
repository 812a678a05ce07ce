package types

import "fmt"

// RemoveField names the registry field used to look up an entry for removal
type RemoveField string

const (
	RemoveFieldUserID      RemoveField = "user_id"
	RemoveFieldProfileUUID RemoveField = "profile_uuid"
)

// IsValid checks if the remove field is valid
func (f RemoveField) IsValid() bool {
	switch f {
	case RemoveFieldUserID, RemoveFieldProfileUUID:
		return true
	default:
		return false
	}
}

// String returns the string representation of the remove field
func (f RemoveField) String() string {
	return string(f)
}

// ParseRemoveField parses a string into a RemoveField
func ParseRemoveField(s string) (RemoveField, error) {
	field := RemoveField(s)
	if !field.IsValid() {
		return "", fmt.Errorf("invalid remove field: %s (use %s or %s)", s, RemoveFieldUserID, RemoveFieldProfileUUID)
	}
	return field, nil
}
