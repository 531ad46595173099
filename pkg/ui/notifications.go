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

// CommandSender delivers notifications by running a platform tool
type CommandSender struct {
	Name string
	Args func(title, message string) []string
}

func (c *CommandSender) Send(title, message string) error {
	return exec.Command(c.Name, c.Args(title, message)...).Run()
}

// platformSender returns the notification tool for the current OS, or nil
func platformSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &CommandSender{Name: "notify-send", Args: func(title, message string) []string {
			return []string{"--app-name=feedharvest", title, message}
		}}
	case "darwin":
		return &CommandSender{Name: "osascript", Args: func(title, message string) []string {
			return []string{"-e", fmt.Sprintf("display notification %q with title %q", message, title)}
		}}
	case "windows":
		return &CommandSender{Name: "msg", Args: func(title, message string) []string {
			return []string{"*", "/TIME:10", title + ": " + message}
		}}
	}
	return nil
}

// Notifier handles cross-platform notifications
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a Notifier for the current platform
func NewNotifier() *Notifier {
	return &Notifier{sender: platformSender()}
}

// NewNotifierWithSender creates a Notifier using a specific sender
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

// SendNotification sends a desktop notification and prints to console
func (n *Notifier) SendNotification(title, message string) {
	printf("\n%s: %s\n", Cyan(title), Yellow(message))
	n.send(title, message)
}

// SendError sends an error notification
func (n *Notifier) SendError(title, message string) {
	printf("\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

// SendSuccess sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	printf("\n%s: %s\n", Green(title), Green(message))
	n.send(title, message)
}

// send delivers a desktop notification; failures are ignored
func (n *Notifier) send(title, message string) {
	if n == nil || n.sender == nil || quiet.Load() {
		return
	}
	_ = n.sender.Send(title, message)
}
