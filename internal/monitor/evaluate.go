package monitor

import (
	"slices"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

// Evaluation is the decision taken for one record after one observation.
type Evaluation struct {
	Update    model.StatusUpdate
	Changed   bool
	Crossings []Crossing
	// Anomaly is set when the chain reported fewer confirmations than already stored.
	Anomaly  bool
	Observed uint64
	Illegal  bool
}

// Crossing is one milestone reached by the observation.
type Crossing struct {
	Milestone model.Milestone
	Percent   int
}

// Evaluate compares a stored record with a fresh, known chain status. It is pure:
// writes and notifications are up to the caller. Fractions are percentages of the
// required confirmations; crossings come out in ascending order.
func Evaluate(rec model.TransactionRecord, st model.ConfirmationStatus, fractions []int) Evaluation {
	required := rec.RequiredConfirmations
	if required == 0 {
		required = st.Required
	}

	next := Classify(st, required)
	if !model.CanTransition(rec.Status, next) {
		return Evaluation{Illegal: true, Observed: st.Confirmations}
	}

	confirmations := max(rec.Confirmations, st.Confirmations)
	height := rec.BlockHeight
	if st.BlockHeight != nil {
		h := *st.BlockHeight
		height = &h
	}

	ev := Evaluation{
		Update: model.StatusUpdate{
			Chain:         rec.Chain,
			Hash:          rec.Hash,
			Confirmations: confirmations,
			BlockHeight:   height,
			Status:        next,
			Seen:          rec.Seen || st.Exists,
		},
		Anomaly:  st.Exists && st.Confirmations < rec.Confirmations,
		Observed: st.Confirmations,
	}
	ev.Changed = next != rec.Status ||
		confirmations != rec.Confirmations ||
		ev.Update.Seen != rec.Seen ||
		!sameHeight(height, rec.BlockHeight)

	if st.Exists && !rec.Seen {
		ev.Crossings = append(ev.Crossings, Crossing{Milestone: model.MilestoneFirstSeen})
	}

	if next != model.StatusFailed && required > 0 {
		progress := confirmations
		if next == model.StatusConfirmed {
			progress = max(progress, required)
		}
		sorted := slices.Clone(fractions)
		slices.Sort(sorted)
		for _, f := range slices.Compact(sorted) {
			threshold := Threshold(required, f)
			if threshold == 0 || threshold >= required {
				continue
			}
			if rec.Confirmations < threshold && threshold <= progress {
				ev.Crossings = append(ev.Crossings, Crossing{Milestone: model.ProgressMilestone(f), Percent: f})
			}
		}
	}

	switch {
	case next == model.StatusConfirmed && rec.Status != model.StatusConfirmed:
		ev.Crossings = append(ev.Crossings, Crossing{Milestone: model.MilestoneConfirmed, Percent: 100})
	case next == model.StatusFailed && rec.Status != model.StatusFailed:
		ev.Crossings = append(ev.Crossings, Crossing{Milestone: model.MilestoneFailed})
	}
	return ev
}

// Classify maps a known chain status onto the record lifecycle.
func Classify(st model.ConfirmationStatus, required uint64) model.TxStatus {
	switch {
	case !st.Exists:
		return model.StatusNotFound
	case st.Pending:
		return model.StatusPending
	case st.Outcome == model.OutcomeDeclined:
		return model.StatusFailed
	case st.Confirmed || (required > 0 && st.Confirmations >= required):
		return model.StatusConfirmed
	default:
		return model.StatusConfirming
	}
}

// Threshold is the confirmation count at which percent of required is reached, rounded up.
func Threshold(required uint64, percent int) uint64 {
	if percent <= 0 {
		return 0
	}
	return (required*uint64(percent) + 99) / 100
}

func sameHeight(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
