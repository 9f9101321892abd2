// Package metrics exposes prometheus collectors for the tracker components.
package metrics

const namespace = "txconfirm"

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
