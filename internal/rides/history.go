package rides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cabs-service/internal/storage"
)

// EmptyHistory is shown when no ride has been completed.
const EmptyHistory = "No rides yet."

// HistoryCard is one completed ride as drawn on the rides screen.
type HistoryCard struct {
	Status  string `json:"status"`
	Title   string `json:"title"`
	From    string `json:"from"`
	Vehicle string `json:"vehicle"`
	Driver  string `json:"driver"`
	Date    string `json:"date"`
}

// HistoryView is the rendered rides list. Exactly one of Empty and Cards
// is set.
type HistoryView struct {
	Empty string        `json:"empty,omitempty"`
	Cards []HistoryCard `json:"cards,omitempty"`
}

// History renders stored rides.
type History struct {
	store *storage.Gateway
	log   *slog.Logger
}

func NewHistory(store *storage.Gateway, log *slog.Logger) *History {
	if log == nil {
		log = slog.Default()
	}
	return &History{store: store, log: log.With("component", "history")}
}

// Records returns stored rides, newest first.
func (h *History) Records(ctx context.Context) ([]RideRecord, error) {
	return loadHistory(ctx, h.store)
}

// Render builds the rides list. Unreadable history renders as empty.
func (h *History) Render(ctx context.Context) HistoryView {
	list, err := h.Records(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrCorruptData) {
			h.log.Error("ride history unreadable", "err", err)
		} else {
			h.log.Warn("ride history unavailable", "err", err)
		}
		list = nil
	}
	if len(list) == 0 {
		return HistoryView{Empty: EmptyHistory}
	}
	cards := make([]HistoryCard, 0, len(list))
	for _, r := range list {
		cards = append(cards, HistoryCard{
			Status:  r.Status,
			Title:   r.Dest,
			From:    "From: " + r.Start,
			Vehicle: fmt.Sprintf("Vehicle: %s (%s)", r.Vehicle, price(r.Price)),
			Driver:  "Driver: " + r.Driver,
			Date:    r.Date,
		})
	}
	return HistoryView{Cards: cards}
}
