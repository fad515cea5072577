package match

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Projection is the read-only announcement view of a match. It is a
// pure function of a match snapshot plus a display-name resolver
// supplied by the adapter; the adapter renders it without re-deriving
// engine state.
type Projection struct {
	Title              string
	Recruiting         bool
	HostID             string
	StartAtText        string
	RecruitmentEndText string
	Description        string
	Activities         []ActivityLine
	Absences           []AbsenceLine
	Footer             string
}

type ActivityLine struct {
	Activity     string
	Participants []string
	Count        int
}

type AbsenceLine struct {
	DisplayName string
	Entries     []AbsenceEntry
}

type AbsenceEntry struct {
	Activity string
	Reason   string
}

// ResolveDisplayName maps a userID to the name shown in the
// announcement. Resolution failures should return an empty string.
type ResolveDisplayName func(userID string) string

func BuildProjection(m *Match, resolve ResolveDisplayName, now time.Time, loc *time.Location) Projection {
	if loc == nil {
		loc = time.UTC
	}
	recruiting := m.EffectivelyRecruiting(now)

	title := announcementTitle
	if !recruiting {
		title += titleSuffixClosed
	} else if m.RecruitmentEndAt != nil {
		title += fmt.Sprintf(titleSuffixDeadlineOpen, m.RecruitmentEndAt.In(loc).Format(deadlineTimeLayout))
	}

	footer := fmt.Sprintf(footerFormatRecruiting, m.ID)
	if !recruiting {
		footer = fmt.Sprintf(footerFormatClosed, m.ID)
	}

	endText := ""
	if m.RecruitmentEndAt != nil {
		endText = m.RecruitmentEndAt.In(loc).Format(announcementTimeLayout)
	}

	return Projection{
		Title:              title,
		Recruiting:         recruiting,
		HostID:             m.HostID,
		StartAtText:        m.StartAt.In(loc).Format(announcementTimeLayout),
		RecruitmentEndText: endText,
		Description:        m.Description,
		Activities:         buildActivityLines(m, resolve),
		Absences:           buildAbsenceLines(m, resolve),
		Footer:             footer,
	}
}

func buildActivityLines(m *Match, resolve ResolveDisplayName) []ActivityLine {
	lines := make([]ActivityLine, 0, len(m.Activities))
	for _, activity := range m.Activities {
		var names []string
		for userID, joined := range m.Attendance {
			if _, ok := joined[activity]; !ok {
				continue
			}
			if _, absent := m.Absence[userID][activity]; absent {
				continue
			}
			names = append(names, displayName(resolve, userID))
		}
		sort.Strings(names)
		lines = append(lines, ActivityLine{
			Activity:     activity,
			Participants: names,
			Count:        len(names),
		})
	}
	return lines
}

func buildAbsenceLines(m *Match, resolve ResolveDisplayName) []AbsenceLine {
	lines := make([]AbsenceLine, 0, len(m.Absence))
	for userID, reasons := range m.Absence {
		if len(reasons) == 0 {
			continue
		}
		line := AbsenceLine{DisplayName: displayName(resolve, userID)}
		for _, activity := range m.Activities {
			if reason, ok := reasons[activity]; ok {
				line.Entries = append(line.Entries, AbsenceEntry{Activity: activity, Reason: reason})
			}
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return strings.ToLower(lines[i].DisplayName) < strings.ToLower(lines[j].DisplayName)
	})
	return lines
}

func displayName(resolve ResolveDisplayName, userID string) string {
	if resolve != nil {
		if name := resolve(userID); name != "" {
			return name
		}
	}
	return fmt.Sprintf(fallbackDisplayNameFmt, userID)
}
