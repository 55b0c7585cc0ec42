package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/blackroad/cli/pkg/table"
	"github.com/blackroad/cli/pkg/util"
	"github.com/pterm/pterm"
)

// NoActivity is shown in place of an empty activity list.
const NoActivity = "No recent activity"

const defaultIcon = "📌"

var actionIcons = map[string]string{
	"deployed":   "🚀",
	"created":    "➕",
	"updated":    "✏️",
	"fixed":      "🔧",
	"configured": "⚙️",
	"milestone":  "⭐",
	"til":        "💡",
	"announce":   "📢",
	"progress":   "📊",
}

// ActionIcon returns the icon for an activity action.
func ActionIcon(action string) string {
	if icon, ok := actionIcons[action]; ok {
		return icon
	}
	return defaultIcon
}

// RelativeTime formats how long ago an RFC 3339 timestamp was: "now" under a
// minute, then whole minutes, hours and days. Unparseable input renders as "-".
func RelativeTime(timestamp string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return strconv.Itoa(int(d/time.Minute)) + "m"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + "h"
	default:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d"
	}
}

// Render writes the totals and the recent activity to w.
func Render(w io.Writer, sum *Summary, now time.Time) error {
	totals := pterm.TableData{
		{"Agents", "Tasks", "Memory"},
		{strconv.Itoa(sum.Agents.Total), strconv.Itoa(sum.Tasks.Total), strconv.Itoa(sum.Memory.Total)},
	}
	if err := table.Fprint(w, totals, true); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, pterm.Bold.Sprint("Recent Activity"))
	if len(sum.Activity) == 0 {
		fmt.Fprintln(w, NoActivity)
		return nil
	}

	rows := make(pterm.TableData, 0, len(sum.Activity))
	for _, e := range sum.Activity {
		rows = append(rows, []string{
			ActionIcon(e.Action),
			util.OrDash(e.Action),
			util.OrDash(e.Entity),
			RelativeTime(e.Timestamp, now),
		})
	}
	return table.Fprint(w, rows, false)
}

// RenderConnectPrompt tells the user how to connect.
func RenderConnectPrompt(w io.Writer) {
	pterm.Warning.WithWriter(w).Println("Not connected to BlackRoad.")
	pterm.Info.WithWriter(w).Println("Run 'blackroad login' to connect your API key, or 'blackroad config test' to diagnose.")
}
