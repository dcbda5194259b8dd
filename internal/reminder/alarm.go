package reminder

import (
	"fmt"
	"strings"

	"github.com/tabkeep/tabkeep/internal/domain"
)

// alarmSeparator joins action and item id in an alarm name. Actions come
// from a closed vocabulary that never contains it; item ids are parsed with
// a single split from the left, so an id containing the separator still
// round-trips.
const alarmSeparator = "::"

// AlarmName is the association an alarm carries: which action to perform
// for which item. The encoded name is the only persistent link between a
// fired timer and its item.
type AlarmName struct {
	Action domain.DeferralAction
	ItemID string
}

// Encode serializes the name for the alarm registry.
func (n AlarmName) Encode() string {
	return string(n.Action) + alarmSeparator + n.ItemID
}

// ParseAlarmName decodes an alarm name produced by Encode.
func ParseAlarmName(s string) (AlarmName, error) {
	action, itemID, found := strings.Cut(s, alarmSeparator)
	if !found {
		return AlarmName{}, fmt.Errorf("alarm name %q: missing separator", s)
	}
	if !domain.DeferralAction(action).Valid() {
		return AlarmName{}, fmt.Errorf("alarm name %q: unknown action %q", s, action)
	}
	if itemID == "" {
		return AlarmName{}, fmt.Errorf("alarm name %q: empty item id", s)
	}
	return AlarmName{Action: domain.DeferralAction(action), ItemID: itemID}, nil
}
