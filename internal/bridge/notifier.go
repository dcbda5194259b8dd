package bridge

import (
	"context"
	"sync"

	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/reminder"
)

// Notifier delivers reminder notifications through the agent command queue
// and routes clicks back to the main triage view.
type Notifier struct {
	queue       *Queue
	liveTabs    LiveTabs
	mainViewURL string
	log         logger.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// NewNotifier creates a notifier that opens mainViewURL on click.
func NewNotifier(queue *Queue, liveTabs LiveTabs, mainViewURL string, log logger.Logger) *Notifier {
	return &Notifier{
		queue:       queue,
		liveTabs:    liveTabs,
		mainViewURL: mainViewURL,
		log:         log,
		active:      make(map[string]struct{}),
	}
}

// Notify queues a notification for display.
func (n *Notifier) Notify(_ context.Context, rn reminder.Notification) error {
	n.mu.Lock()
	n.active[rn.ID] = struct{}{}
	n.mu.Unlock()

	n.queue.Enqueue(Command{Kind: CmdNotify, Notification: &Notification{
		ID:      rn.ID,
		Title:   rn.Title,
		Message: rn.Message,
		Sticky:  rn.Sticky,
		Buttons: rn.Buttons,
	}})
	return nil
}

// HandleClick reacts to the user activating a notification or one of its
// buttons: the main view opens and the notification is cleared. Clicks for
// unknown notification ids are ignored.
func (n *Notifier) HandleClick(ctx context.Context, id string) {
	n.mu.Lock()
	_, known := n.active[id]
	delete(n.active, id)
	n.mu.Unlock()
	if !known {
		n.log.Debug("click for unknown notification", logger.String("id", id))
		return
	}

	if err := n.liveTabs.CreateTab(ctx, n.mainViewURL); err != nil {
		n.log.Error("open main view", logger.Error(err))
	}
	n.queue.Enqueue(Command{Kind: CmdClearNotification, NotificationID: id})
}
