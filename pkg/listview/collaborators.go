package listview

// NotificationKind classifies a transient user notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyWarning NotificationKind = "warning"
	NotifyInfo    NotificationKind = "info"
)

// Notifier displays a transient notification. Implementations are
// fire-and-forget; the controller never consumes a return value.
type Notifier interface {
	Notify(kind NotificationKind, title, detail string)
}

// Navigator applies a URL change carrying the encoded listing state,
// e.g. by pushing it into browser history or a TUI route.
type Navigator interface {
	Navigate(target string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(NotificationKind, string, string) {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}
