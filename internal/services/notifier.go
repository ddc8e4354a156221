package services

import (
	"sync"

	"fittrack/internal/models"
)

// Notifier shows short, non-blocking messages to the user.
type Notifier interface {
	Notify(n models.Notification)
}

type NotifierFunc func(models.Notification)

func (f NotifierFunc) Notify(n models.Notification) { f(n) }

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(models.Notification) {}

// NotificationLog records notifications in order.
type NotificationLog struct {
	mu    sync.Mutex
	items []models.Notification
}

func (l *NotificationLog) Notify(n models.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
}

func (l *NotificationLog) All() []models.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Notification(nil), l.items...)
}

// Last returns the most recent notification.
func (l *NotificationLog) Last() (models.Notification, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return models.Notification{}, false
	}
	return l.items[len(l.items)-1], true
}

func notifySuccess(n Notifier, msg string) {
	n.Notify(models.Notification{Type: models.NotificationSuccess, Message: msg})
}

func notifyError(n Notifier, msg string) {
	n.Notify(models.Notification{Type: models.NotificationError, Message: msg})
}
