package types

import "time"

// Toast is a transient message shown over the board
type Toast struct {
	Level   ToastLevel
	Message string
	Expires time.Time
}

// NewToast returns a toast that expires after the level's lifetime
func NewToast(level ToastLevel, msg string, now time.Time) Toast {
	return Toast{Level: level, Message: msg, Expires: now.Add(level.Lifetime())}
}

// Expired reports whether the toast should no longer be shown
func (t Toast) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// Active returns the toasts of ts still showing at now, oldest first,
// keeping at most limit of the newest. ts is not modified.
func Active(ts []Toast, now time.Time, limit int) []Toast {
	out := make([]Toast, 0, len(ts))
	for _, t := range ts {
		if !t.Expired(now) {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// ToastLevel is the severity of a toast
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// Lifetime returns how long a toast of this level stays on screen
func (l ToastLevel) Lifetime() time.Duration {
	switch l {
	case ToastError:
		return 8 * time.Second
	case ToastWarning:
		return 5 * time.Second
	default:
		return 3 * time.Second
	}
}
