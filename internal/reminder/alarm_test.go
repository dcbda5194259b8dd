package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabkeep/tabkeep/internal/domain"
)

func TestAlarmNameRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		action domain.DeferralAction
		itemID string
	}{
		{name: "uuid id", action: domain.ActionRemindMe, itemID: "0f7c1f3a-1c2d-4e5f-8a9b-0c1d2e3f4a5b"},
		{name: "follow up", action: domain.ActionFollowUp, itemID: "abc"},
		{name: "review", action: domain.ActionReview, itemID: "abc"},
		{name: "id containing the separator", action: domain.ActionRemindMe, itemID: "weird::id::with::colons"},
		{name: "id with single colons", action: domain.ActionReview, itemID: "a:b:c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := AlarmName{Action: tt.action, ItemID: tt.itemID}.Encode()
			decoded, err := ParseAlarmName(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.action, decoded.Action)
			assert.Equal(t, tt.itemID, decoded.ItemID)
		})
	}
}

func TestParseAlarmNameRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no separator", input: "remind_me"},
		{name: "unknown action", input: "snooze::abc"},
		{name: "empty item id", input: "remind_me::"},
		{name: "empty string", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAlarmName(tt.input)
			assert.Error(t, err)
		})
	}
}
