// Package notify holds the injectable user-facing side effects of the
// client: transient notifications and navigation requests.
package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Navigator interface {
	Navigate(path string)
}

// LogNotifier surfaces notifications as log lines.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: logger}
}

func (n *LogNotifier) Success(msg string) {
	n.log.WithField("notification", LevelSuccess).Info(msg)
}

func (n *LogNotifier) Error(msg string) {
	n.log.WithField("notification", LevelError).Warn(msg)
}

// LogNavigator logs navigation requests and remembers the latest target.
type LogNavigator struct {
	log *logrus.Logger

	mu   sync.Mutex
	path string
}

func NewLogNavigator(logger *logrus.Logger) *LogNavigator {
	return &LogNavigator{log: logger}
}

func (n *LogNavigator) Navigate(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
	n.log.Debugf("Navigation requested: %s", path)
}

// Location returns the last requested path, or "" if none.
func (n *LogNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}
