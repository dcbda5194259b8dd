package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeep/internal/domain"
	"github.com/tabkeep/tabkeep/internal/httpserver/deps"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/reminder"
)

type scheduleRequest struct {
	Action domain.DeferralAction `json:"action"`
	Label  string                `json:"label"`
}

type scheduleResponse struct {
	ItemID string `json:"itemId"`
	FireAt int64  `json:"fireAt"` // ms epoch
}

// ScheduleItem defers an item: it moves to the deferred collection and an
// alarm is registered for the label's resolved time.
func ScheduleItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "id")

		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request", http.StatusBadRequest)
			return
		}
		if !req.Action.Valid() {
			http.Error(w, "unknown deferral action", http.StatusBadRequest)
			return
		}

		fireAt, err := d.Reminders.Schedule(r.Context(), itemID, req.Action, req.Label)
		if err != nil {
			writeItemError(w, d, err, itemID)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scheduleResponse{
			ItemID: itemID,
			FireAt: fireAt.UnixMilli(),
		})
	}
}

// RestoreItem moves a deferred item back to the inbox and drops its alarm.
func RestoreItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "id")
		if err := d.Reminders.Restore(r.Context(), itemID); err != nil {
			writeItemError(w, d, err, itemID)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteItem moves a deferred item to the trash and drops its alarm.
func DeleteItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "id")
		if err := d.Reminders.Delete(r.Context(), itemID); err != nil {
			writeItemError(w, d, err, itemID)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// FireReminder force-fires a pending reminder, mostly useful for testing
// notification plumbing end to end.
func FireReminder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "id")

		pending, err := d.Reminders.ListPending(r.Context())
		if err != nil {
			d.Logger.Error("list pending reminders", logger.Error(err))
			http.Error(w, "reminder lookup failed", http.StatusInternalServerError)
			return
		}

		for _, alarm := range pending {
			name, err := reminder.ParseAlarmName(alarm.Name)
			if err != nil || name.ItemID != itemID {
				continue
			}
			if err := d.Reminders.HandleFire(r.Context(), alarm.Name); err != nil {
				d.Logger.Error("manual reminder fire", logger.Error(err))
				http.Error(w, "fire failed", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusAccepted)
			return
		}
		http.Error(w, "no pending reminder for item", http.StatusNotFound)
	}
}

type remindersResponse struct {
	Reminders []pendingReminder `json:"reminders"`
}

type pendingReminder struct {
	ItemID string                `json:"itemId"`
	Action domain.DeferralAction `json:"action"`
	FireAt int64                 `json:"fireAt"`
	In     string                `json:"in"`
}

// ListReminders returns every registered alarm with its decoded item.
func ListReminders(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		alarms, err := d.Reminders.ListPending(r.Context())
		if err != nil {
			d.Logger.Error("list pending reminders", logger.Error(err))
			http.Error(w, "reminder lookup failed", http.StatusInternalServerError)
			return
		}

		out := make([]pendingReminder, 0, len(alarms))
		for _, alarm := range alarms {
			name, err := reminder.ParseAlarmName(alarm.Name)
			if err != nil {
				continue
			}
			out = append(out, pendingReminder{
				ItemID: name.ItemID,
				Action: name.Action,
				FireAt: alarm.ScheduledTime.UnixMilli(),
				In:     alarm.ScheduledTime.Sub(now()).Round(time.Second).String(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(remindersResponse{Reminders: out})
	}
}

func writeItemError(w http.ResponseWriter, d deps.Deps, err error, itemID string) {
	if errors.Is(err, reminder.ErrItemNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	d.Logger.Error("item operation failed",
		logger.String("item_id", itemID), logger.Error(err))
	http.Error(w, "operation failed", http.StatusInternalServerError)
}
