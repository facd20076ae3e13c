package notify

import (
	"time"

	"notesync-core/internal/pkg/logger"
)

// Notice is a user-visible, non-fatal message. Notices never block
// further interaction with the stores.
type Notice struct {
	Id          string
	Title       string
	Content     string
	Dismissible bool
	Duration    time.Duration
	// Route is an optional deep-link target, e.g. the AI settings
	// page for retryable provider failures.
	Route string
}

// TooShortNotice is raised when a session has no transcript words to
// enhance.
func TooShortNotice() Notice {
	return Notice{
		Id:          "short-timeline",
		Title:       "Recording too short",
		Content:     "The recording is too short to enhance",
		Dismissible: true,
		Duration:    5 * time.Second,
	}
}

// EnhanceFailedNotice is raised for provider failures that the user can
// retry, deep-linking to the model connection settings.
func EnhanceFailedNotice() Notice {
	return Notice{
		Id:          "enhance-failed",
		Title:       "Enhancement failed",
		Content:     "Failed to enhance the note. Check your AI connection settings and try again.",
		Dismissible: true,
		Duration:    8 * time.Second,
		Route:       "/app/settings?tab=ai",
	}
}

// Notifier delivers notices to the UI layer.
type Notifier interface {
	Notify(notice Notice)
}

// LogNotifier is the default sink when no UI is attached.
type LogNotifier struct {
	Log logger.ILogger
}

func (n *LogNotifier) Notify(notice Notice) {
	n.Log.Info("Notify", notice.Title, map[string]interface{}{
		"id":      notice.Id,
		"content": notice.Content,
		"route":   notice.Route,
	})
}
