// Package domain holds the small enums shared by the engine's services.
package domain

import (
	"fmt"
	"strings"
)

// Mode is the discovery scope.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeGlobal Mode = "global"
)

// ParseMode reads a mode query value; empty defaults to local.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLocal:
		return ModeLocal, nil
	case ModeGlobal:
		return ModeGlobal, nil
	}
	return "", fmt.Errorf("unknown discovery mode %q", s)
}

func (m Mode) IsLocal() bool { return m != ModeGlobal }

// ActionType names a throttled or cooled-down action.
type ActionType string

const (
	ActionLike    ActionType = "like"
	ActionRequest ActionType = "request"
	ActionReport  ActionType = "report"
)

// NotificationType names a notification intent handed to the notifier.
type NotificationType string

const (
	NotifyRequestReceived NotificationType = "request_received"
	NotifyRequestAccepted NotificationType = "request_accepted"
)
