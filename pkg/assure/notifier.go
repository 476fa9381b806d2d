package assure

// Notifier receives user-visible notifications. The client emits exactly
// one notification per failed operation; performing the operation and
// telling the user about it are separate concerns, so callers that render
// their own error states can keep the default no-op notifier.
type Notifier interface {
	Notify(level Level, message string)
}

// Level classifies a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// nopNotifier discards all notifications.
type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(level Level, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}
