package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Milestone names a notification-worthy point in a transaction's lifecycle.
type Milestone string

const (
	MilestoneFirstSeen Milestone = "first_seen"
	MilestoneConfirmed Milestone = "confirmed"
	MilestoneFailed    Milestone = "failed"
)

// ProgressMilestone returns the tag for a fractional threshold, e.g. progress_50.
func ProgressMilestone(percent int) Milestone {
	return Milestone(fmt.Sprintf("progress_%d", percent))
}

// DedupKey identifies one milestone notification for one owner.
type DedupKey struct {
	Chain     Chain
	Hash      string
	Owner     string
	Milestone Milestone
}

// Digest returns a stable hex SHA-256 of the key fields.
func (k DedupKey) Digest() string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		string(k.Chain),
		strings.ToLower(k.Hash),
		k.Owner,
		string(k.Milestone),
	}, "|")))
	return hex.EncodeToString(sum[:])
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Chain, k.Hash, k.Owner, k.Milestone)
}
