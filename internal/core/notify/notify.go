// Package notify defines user-facing status notifications.
package notify

import (
	"fmt"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a single status message.
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Infof builds an info-level notification.
func Infof(format string, args ...any) Notification {
	return Notification{Level: LevelInfo, Message: fmt.Sprintf(format, args...), CreatedAt: time.Now()}
}

// Warnf builds a warning-level notification.
func Warnf(format string, args ...any) Notification {
	return Notification{Level: LevelWarning, Message: fmt.Sprintf(format, args...), CreatedAt: time.Now()}
}

// Errorf builds an error-level notification.
func Errorf(format string, args ...any) Notification {
	return Notification{Level: LevelError, Message: fmt.Sprintf(format, args...), CreatedAt: time.Now()}
}
