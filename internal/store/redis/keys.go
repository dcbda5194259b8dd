package redis

import "github.com/tabkeep/tabkeep/internal/domain"

const (
	// KeyPrefixCollection is the prefix for item collection keys
	KeyPrefixCollection = "tabkeep:collection:"
	// KeyPreferences holds the user preferences object
	KeyPreferences = "tabkeep:userPreferences"
	// KeyPrefixSuggestion is the prefix for cached tag suggestions
	KeyPrefixSuggestion = "tabkeep:suggestion:"
	// KeyAlarms is the sorted set of pending alarms, scored by fire time
	KeyAlarms = "tabkeep:alarms"
	// ChannelChanges is the pub/sub channel carrying change notifications
	ChannelChanges = "tabkeep:changes"

	// PreferencesChangeKey is the logical key published when preferences change
	PreferencesChangeKey = "userPreferences"
)

// CollectionKey returns the Redis key for an item collection
func CollectionKey(c domain.Collection) string {
	return KeyPrefixCollection + string(c)
}

// SuggestionKey returns the Redis key for a cached suggestion entry
func SuggestionKey(normalizedURL string) string {
	return KeyPrefixSuggestion + normalizedURL
}
