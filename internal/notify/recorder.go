package notify

import "sync"

type Notification struct {
	Level   Level
	Message string
}

// Recorder implements Notifier and Navigator by keeping everything it
// receives, in order.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
	navigations   []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(msg string) {
	r.add(Notification{Level: LevelSuccess, Message: msg})
}

func (r *Recorder) Error(msg string) {
	r.add(Notification{Level: LevelError, Message: msg})
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigations = append(r.navigations, path)
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notifications))
	for _, n := range r.notifications {
		out = append(out, n.Message)
	}
	return out
}

func (r *Recorder) Navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.navigations))
	copy(out, r.navigations)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = nil
	r.navigations = nil
}
