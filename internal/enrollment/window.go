package enrollment

import (
	"strings"
	"time"
)

// Window is the administrator-configured enrollment period controlling
// whether students may submit new project proposals.
type Window struct {
	Aberto     bool    `json:"aberto"`
	DataLimite *string `json:"data_limite"`
}

// Closed is the safe default used when the window state cannot be fetched.
func Closed() Window {
	return Window{Aberto: false}
}

// Deadline formats accepted from the backend. The admin panel historically
// posted both zoned and naive timestamps, so both are tolerated.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDeadline(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CanSubmit decides whether project submission is allowed at the given
// instant. Closed overrides everything. An open window with no deadline is
// open-ended. The deadline boundary is inclusive. A deadline that is present
// but unparseable counts as no deadline: that is a data-quality problem on an
// otherwise-open window, and availability wins over strictness there.
func CanSubmit(w Window, now time.Time) bool {
	if !w.Aberto {
		return false
	}
	if w.DataLimite == nil || strings.TrimSpace(*w.DataLimite) == "" {
		return true
	}
	deadline, ok := parseDeadline(*w.DataLimite)
	if !ok {
		return true
	}
	return !now.After(deadline)
}
