package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeNavigating, "NAVIGATE"},
		{ModeEditing, "EDIT"},
		{ModeConfirmDelete, "CONFIRM"},
		{Mode(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.String())
		})
	}
}

func TestToast_Expired(t *testing.T) {
	now := time.Now()
	toast := Toast{Level: ToastInfo, Message: "hi", Expires: now.Add(time.Second)}

	assert.False(t, toast.Expired(now))
	assert.True(t, toast.Expired(now.Add(time.Second)))
	assert.True(t, toast.Expired(now.Add(time.Minute)))
}

func TestToastLevel_Lifetime(t *testing.T) {
	assert.Greater(t, ToastError.Lifetime(), ToastInfo.Lifetime())
	assert.Equal(t, ToastInfo.Lifetime(), ToastSuccess.Lifetime())
}

func TestActive(t *testing.T) {
	now := time.Now()
	old := NewToast(ToastInfo, "old", now.Add(-time.Hour))
	a := NewToast(ToastInfo, "a", now)
	b := NewToast(ToastError, "b", now)
	c := NewToast(ToastWarning, "c", now)

	tests := []struct {
		name  string
		in    []Toast
		limit int
		want  []string
	}{
		{"drops expired", []Toast{old, a}, 5, []string{"a"}},
		{"keeps newest", []Toast{a, b, c}, 2, []string{"b", "c"}},
		{"no limit", []Toast{a, b, c}, 0, []string{"a", "b", "c"}},
		{"empty", nil, 5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]string, 0)
			for _, ts := range Active(tt.in, now, tt.limit) {
				got = append(got, ts.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
