package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// Notifier reports the end of a session on the console and, where supported,
// as a desktop notification
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a Notifier for the current platform
func NewNotifier() *Notifier {
	var sender NotificationSender

	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	}

	return NewNotifierWithSender(sender)
}

// NewNotifierWithSender creates a Notifier around a given sender; nil means console only
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

// SendSuccess prints and sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(Out, "\n%s: %s\n", Green(title), Green(message))
	n.send(title, message)
}

// SendError prints and sends an error notification
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(Out, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

func (n *Notifier) send(title, message string) {
	if n.sender == nil {
		return
	}
	// desktop notifications are best effort
	_ = n.sender.Send(title, message)
}
