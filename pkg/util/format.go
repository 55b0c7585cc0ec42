package util

import "strings"

// OrDash returns the string if non-blank, otherwise returns "-".
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// FirstOrDash returns the first non-empty string from the provided items.
// If all items are empty, it returns "-".
func FirstOrDash(items ...string) string {
	for _, item := range items {
		if item != "" {
			return item
		}
	}
	return "-"
}

// OnOff renders a boolean preference.
func OnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
