package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

const barLength = 10

// Format renders the HTML message for one milestone.
func Format(milestone model.Milestone, n model.Notification) string {
	var b strings.Builder
	switch {
	case milestone == model.MilestoneFirstSeen:
		b.WriteString("🔍 <b>Transaction Detected</b>\n\n")
		writeHeader(&b, n)
		fmt.Fprintf(&b, "\nStatus: waiting for confirmations\nRequired: %d", n.Required)
	case milestone == model.MilestoneConfirmed:
		b.WriteString("✅ <b>Transaction Confirmed!</b>\n\n")
		writeHeader(&b, n)
		fmt.Fprintf(&b, "\nConfirmations: %d/%d", max(n.Confirmations, n.Required), n.Required)
		if n.BlockHeight != nil {
			fmt.Fprintf(&b, "\nBlock: #%d", *n.BlockHeight)
		}
	case milestone == model.MilestoneFailed:
		b.WriteString("❌ <b>Transaction Failed</b>\n\n")
		writeHeader(&b, n)
		b.WriteString("\n<b>Common issues:</b>\n")
		b.WriteString("• Insufficient gas or fees\n")
		b.WriteString("• Token approval not set\n")
		b.WriteString("• Network congestion\n")
	default:
		percent := n.Percent
		if percent == 0 {
			percent = n.Progress()
		}
		b.WriteString("⏳ <b>Confirmation Progress</b>\n\n")
		writeHeader(&b, n)
		fmt.Fprintf(&b, "\n%s\nConfirmations: %d/%d", ProgressBar(percent), n.Confirmations, n.Required)
	}
	return b.String()
}

func writeHeader(b *strings.Builder, n model.Notification) {
	fmt.Fprintf(b, "Chain: %s\n", strings.ToUpper(html.EscapeString(string(n.Key.Chain))))
	fmt.Fprintf(b, "Hash: <code>%s</code>\n", html.EscapeString(ShortHash(n.Key.Hash)))
}

// ProgressBar draws a fixed-width bar, e.g. [█████░░░░░] 50%.
func ProgressBar(percent int) string {
	percent = min(max(percent, 0), 100)
	filled := barLength * percent / 100
	return fmt.Sprintf("[%s%s] %d%%", strings.Repeat("█", filled), strings.Repeat("░", barLength-filled), percent)
}

// ShortHash keeps the first 16 and last 8 characters of long hashes.
func ShortHash(hash string) string {
	if len(hash) <= 27 {
		return hash
	}
	return hash[:16] + "..." + hash[len(hash)-8:]
}
