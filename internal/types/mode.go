// Package types contains shared types used across the application.
package types

// Mode represents the current interaction mode of the UI
type Mode int

const (
	ModeNavigating Mode = iota
	ModeEditing
	ModeConfirmDelete
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNavigating:
		return "NAVIGATE"
	case ModeEditing:
		return "EDIT"
	case ModeConfirmDelete:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}
