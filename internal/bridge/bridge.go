// Package bridge is the seam between the daemon and the browser-side
// agent. The agent reports tab lifecycle events over the HTTP ingress and
// drains a queue of outbound commands (close tabs, open URLs, show
// notifications); everything the core consumes is expressed as small
// contracts implemented on top of that mirror.
package bridge

import (
	"context"

	"github.com/tabkeep/tabkeep/internal/domain"
)

// Tab event kinds reported by the agent.
const (
	TabCreated = "created"
	TabUpdated = "updated"
	TabRemoved = "removed"
	TabFocus   = "focus"
)

// TabEvent is one agent-reported tab lifecycle event.
type TabEvent struct {
	Kind  string              `json:"kind"`
	Tab   *domain.TabSnapshot `json:"tab,omitempty"`
	TabID int                 `json:"tabId,omitempty"`
}

// Command kinds sent back to the agent.
const (
	CmdCloseTabs         = "close_tabs"
	CmdCreateTab         = "create_tab"
	CmdOpenPopup         = "open_popup"
	CmdNotify            = "notify"
	CmdClearNotification = "clear_notification"
)

// Command is one outbound instruction for the agent.
type Command struct {
	Kind           string        `json:"kind"`
	TabIDs         []int         `json:"tabIds,omitempty"`
	URL            string        `json:"url,omitempty"`
	Notification   *Notification `json:"notification,omitempty"`
	NotificationID string        `json:"notificationId,omitempty"`
}

// Notification is the wire form of a user notification.
type Notification struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Sticky  bool     `json:"sticky"`
	Buttons []string `json:"buttons,omitempty"`
}

// LiveTabs is the live browser tab registry contract.
type LiveTabs interface {
	QueryAll(ctx context.Context) ([]domain.TabSnapshot, error)
	FindTabMatching(ctx context.Context, url string) (*domain.TabSnapshot, error)
	CloseTabs(ctx context.Context, tabIDs []int) error
	CreateTab(ctx context.Context, url string) error
	OpenPopup(ctx context.Context) error
	SubscribeTabEvents(fn func()) (unsubscribe func())
}

// HistoryEntry is one remembered navigation.
type HistoryEntry struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	LastVisitTime int64  `json:"lastVisitTime"` // ms epoch
	VisitCount    int    `json:"visitCount"`
}

// HistoryProvider searches remembered navigations. Implementations degrade
// to empty results when no data is available.
type HistoryProvider interface {
	Search(text string, maxResults int) []HistoryEntry
}
