package model

import (
	"fmt"
	"time"
)

// StatusDisplay describes how a status is rendered on the provider dashboard.
type StatusDisplay struct {
	Status       Status `json:"status"`
	Label        string `json:"label"`
	BadgeVariant string `json:"badgeVariant"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
}

var statusDisplays = map[Status]StatusDisplay{
	StatusPending: {
		Status:       StatusPending,
		Label:        "In afwachting",
		BadgeVariant: "secondary",
		Color:        "yellow",
		Icon:         "clock",
	},
	StatusConfirmed: {
		Status:       StatusConfirmed,
		Label:        "Bevestigd",
		BadgeVariant: "default",
		Color:        "green",
		Icon:         "check",
	},
	StatusRejected: {
		Status:       StatusRejected,
		Label:        "Geweigerd",
		BadgeVariant: "destructive",
		Color:        "red",
		Icon:         "x",
	},
}

// DisplayFor returns the display entry for s. Unknown statuses get a neutral entry.
func DisplayFor(s Status) StatusDisplay {
	if d, ok := statusDisplays[s]; ok {
		return d
	}
	return StatusDisplay{Status: s, Label: string(s), BadgeVariant: "outline", Color: "gray", Icon: "help"}
}

func DisplayTable() []StatusDisplay {
	out := make([]StatusDisplay, 0, len(Statuses))
	for _, s := range Statuses {
		out = append(out, statusDisplays[s])
	}
	return out
}

var (
	dutchWeekdays = [...]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"}
	dutchMonths   = [...]string{"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"}
)

// FormatDisplayDate renders a date the way the nl-NL dashboard shows it,
// e.g. "woensdag 17 juli 2024". Unparsable input is returned as is.
func FormatDisplayDate(date string) string {
	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %d %s %d", dutchWeekdays[d.Weekday()], d.Day(), dutchMonths[d.Month()-1], d.Year())
}

// FormatDisplayTimestamp renders a creation timestamp as "16-7-2024 14:30:00".
func FormatDisplayTimestamp(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d %s", t.Day(), int(t.Month()), t.Year(), t.Format("15:04:05"))
}
