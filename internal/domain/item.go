package domain

import (
	"time"

	"github.com/google/uuid"
)

// Collection identifies one of the durable buckets an item can live in.
type Collection string

const (
	CollectionInbox    Collection = "inbox"
	CollectionDeferred Collection = "deferred"
	CollectionArchive  Collection = "archive"
	CollectionTrash    Collection = "trash"
	CollectionNotes    Collection = "notes"
)

// DedupCollections is the scan order for URL deduplication.
// Notes are identified by id, never by URL, so they are excluded.
var DedupCollections = []Collection{
	CollectionInbox,
	CollectionDeferred,
	CollectionArchive,
	CollectionTrash,
}

// AllCollections lists every persisted item bucket.
var AllCollections = []Collection{
	CollectionInbox,
	CollectionDeferred,
	CollectionArchive,
	CollectionTrash,
	CollectionNotes,
}

// Valid reports whether c is a known collection name.
func (c Collection) Valid() bool {
	switch c {
	case CollectionInbox, CollectionDeferred, CollectionArchive, CollectionTrash, CollectionNotes:
		return true
	}
	return false
}

// DeferralAction is the reason an item was deferred.
type DeferralAction string

const (
	ActionRemindMe DeferralAction = "remind_me"
	ActionFollowUp DeferralAction = "follow_up"
	ActionReview   DeferralAction = "review"
)

// Valid reports whether a is part of the closed action vocabulary.
func (a DeferralAction) Valid() bool {
	switch a {
	case ActionRemindMe, ActionFollowUp, ActionReview:
		return true
	}
	return false
}

// Label returns a human-readable form of the action for notifications.
func (a DeferralAction) Label() string {
	switch a {
	case ActionRemindMe:
		return "Reminder"
	case ActionFollowUp:
		return "Follow up"
	case ActionReview:
		return "Review"
	default:
		return "Reminder"
	}
}

// Deferral is present only while an item sits in the deferred collection.
type Deferral struct {
	Action DeferralAction `json:"action"`
	FireAt int64          `json:"fireAt"` // ms epoch
}

// Item is the unit of triage: a saved tab or note.
//
// Exactly one collection holds a given id at any time. Collection is kept
// on the record so consumers of a single item do not need to know which
// bucket it was read from.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"` // empty for pure notes
	Description string     `json:"description,omitempty"`
	Favicon     string     `json:"favicon,omitempty"`
	Timestamp   int64      `json:"timestamp"` // creation time, ms epoch
	Collection  Collection `json:"collection"`
	Deferral    *Deferral  `json:"deferral,omitempty"`
}

// NewItem builds a fresh inbox item with a generated id.
func NewItem(title, url, description, favicon string, now time.Time) Item {
	return Item{
		ID:          uuid.NewString(),
		Title:       title,
		URL:         url,
		Description: description,
		Favicon:     favicon,
		Timestamp:   now.UnixMilli(),
		Collection:  CollectionInbox,
	}
}

// TabSnapshot is the last known metadata of a live browser tab.
type TabSnapshot struct {
	TabID   int    `json:"tabId"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Favicon string `json:"favicon,omitempty"`
	Pinned  bool   `json:"pinned,omitempty"`
}

// Alarm is a deferred-callback registration. The name is the only link
// between a fired timer and the item it concerns.
type Alarm struct {
	Name          string    `json:"name"`
	ScheduledTime time.Time `json:"scheduledTime"`
}

// Preferences holds non-item user settings.
type Preferences struct {
	Theme             string `json:"theme"`
	ShowNotifications bool   `json:"showNotifications"`
	CaptureOnClose    bool   `json:"captureOnClose"`
	StaleDays         int    `json:"staleDays"`
}

// DefaultPreferences is the shape used when the stored value is missing.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:             "system",
		ShowNotifications: true,
		CaptureOnClose:    true,
		StaleDays:         14,
	}
}
