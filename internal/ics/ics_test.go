package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"dayplanner/internal/model"
	"dayplanner/internal/planner"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newPlanner() *planner.Planner {
	return planner.New(nil, nil,
		planner.WithLocation(time.UTC),
		planner.WithClock(func() time.Time { return fixedNow }),
	)
}

func importOpts() ImportOptions {
	return ImportOptions{Location: time.UTC, Now: fixedNow, HorizonDays: 365, BackfillDays: 30}
}

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func TestExportFormat(t *testing.T) {
	p := newPlanner()
	if _, err := p.AddEvent(planner.EventInput{Title: "Экзамен", Date: "2024-06-20", Time: "09:30", Reminder: "15"}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddEvent(planner.EventInput{Title: "Каникулы", Date: "2024-07-01"}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	err := Export(&buf, p.ListEvents(planner.EventAll, ""), ExportOptions{
		ProductID: "-//test//RU",
		Duration:  90 * time.Minute,
		Location:  time.UTC,
		Now:       fixedNow,
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	body := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:-//test//RU",
		"UID:event-1@dayplanner",
		"DTSTART:20240620T093000Z",
		"DTEND:20240620T110000Z",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-P0DT0H15M",
		"DTSTART;VALUE=DATE:20240701",
		"DTEND;VALUE=DATE:20240702",
		"END:VCALENDAR",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("export missing %q", want)
		}
	}
	if n := strings.Count(body, "BEGIN:VALARM"); n != 1 {
		t.Errorf("VALARM count = %d, want 1", n)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newPlanner()
	inputs := []planner.EventInput{
		{Title: "Экзамен", Description: "ауд. 101", Date: "2024-06-20", Time: "09:30", Reminder: "15"},
		{Title: "Каникулы", Date: "2024-07-01"},
		{Title: "Защита", Date: "2024-09-02", Time: "14:00", Reminder: "1500"},
	}
	for _, in := range inputs {
		if _, err := src.AddEvent(in); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := Export(&buf, src.ListEvents(planner.EventAll, ""), ExportOptions{Location: time.UTC, Now: fixedNow}); err != nil {
		t.Fatal(err)
	}
	exported := buf.String()

	dst := newPlanner()
	res, err := Import(dst, strings.NewReader(exported), importOpts())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Added) != len(inputs) {
		t.Fatalf("added %d events, want %d", len(res.Added), len(inputs))
	}

	want := src.ListEvents(planner.EventAll, "")
	got := dst.ListEvents(planner.EventAll, "")
	for i := range want {
		w, g := want[i], got[i]
		if g.Title != w.Title || g.Description != w.Description || g.Date != w.Date ||
			model.Deref(g.Time) != model.Deref(w.Time) {
			t.Errorf("event %d: got %+v, want %+v", i, g, w)
		}
		if (g.Reminder == nil) != (w.Reminder == nil) || (g.Reminder != nil && *g.Reminder != *w.Reminder) {
			t.Errorf("event %d reminder: got %v, want %v", i, g.Reminder, w.Reminder)
		}
	}

	again, err := Import(dst, strings.NewReader(exported), importOpts())
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Added) != 0 || again.Duplicates != len(inputs) {
		t.Errorf("re-import: added %d, duplicates %d", len(again.Added), again.Duplicates)
	}
}

const weeklyLecture = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:lecture@test
DTSTAMP:20240101T000000Z
DTSTART:20240603T090000Z
DTEND:20240603T103000Z
SUMMARY:Лекция
RRULE:FREQ=WEEKLY;COUNT=4
EXDATE:20240610T090000Z
END:VEVENT
BEGIN:VEVENT
UID:lecture@test
DTSTAMP:20240101T000000Z
RECURRENCE-ID:20240617T090000Z
DTSTART:20240617T110000Z
DTEND:20240617T123000Z
SUMMARY:Лекция (перенос)
END:VEVENT
BEGIN:VEVENT
UID:holiday@test
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20240612
SUMMARY:Выходной
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20240101T000000Z
DTSTART:20240612T100000Z
SUMMARY:Без UID
END:VEVENT
END:VCALENDAR
`

func TestParseAndExpand(t *testing.T) {
	parsed, err := Parse(strings.NewReader(crlf(weeklyLecture)), time.UTC)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("parsed %d events, want 3 (one without UID skipped)", len(parsed))
	}

	exp, err := Expand(parsed, Window{
		Location: time.UTC,
		Start:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	type row struct{ summary, start string }
	var got []row
	for _, o := range exp.Occurrences {
		got = append(got, row{o.Summary, o.Start.Format("2006-01-02 15:04")})
	}
	want := []row{
		{"Лекция", "2024-06-03 09:00"},
		{"Лекция (перенос)", "2024-06-17 11:00"},
		{"Лекция", "2024-06-24 09:00"},
		{"Выходной", "2024-06-12 00:00"},
	}
	if len(got) != len(want) {
		t.Fatalf("occurrences = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d = %v, want %v", i, got[i], want[i])
		}
	}
	if !exp.Occurrences[3].AllDay {
		t.Error("VALUE=DATE event should be all-day")
	}
}

func TestExpandWindowAndCap(t *testing.T) {
	parsed, err := Parse(strings.NewReader(crlf(weeklyLecture)), time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	exp, err := Expand(parsed, Window{
		Location: time.UTC,
		Start:    time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.Occurrences) != 1 || exp.Occurrences[0].Start.Day() != 24 {
		t.Errorf("window should keep only 2024-06-24, got %+v", exp.Occurrences)
	}

	exp, err = Expand(parsed, Window{
		Location:    time.UTC,
		Start:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxPerEvent: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.Truncated) != 1 || exp.Truncated[0] != "lecture@test" {
		t.Errorf("Truncated = %v", exp.Truncated)
	}

	if _, err := Expand(parsed, Window{Start: fixedNow, End: fixedNow.Add(-time.Hour)}); err == nil {
		t.Error("inverted window should fail")
	}
}

func TestImportRejectsUntitled(t *testing.T) {
	const body = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:blank@test
DTSTAMP:20240101T000000Z
DTSTART:20240620T100000Z
END:VEVENT
BEGIN:VEVENT
UID:ok@test
DTSTAMP:20240101T000000Z
DTSTART:20240621T100000Z
SUMMARY:Семинар
END:VEVENT
END:VCALENDAR
`
	p := newPlanner()
	res, err := Import(p, strings.NewReader(crlf(body)), importOpts())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Rejected != 1 || len(res.Added) != 1 {
		t.Errorf("rejected %d added %d, want 1/1", res.Rejected, len(res.Added))
	}
	if res.Added[0].Title != "Семинар" || model.Deref(res.Added[0].Time) != "10:00" {
		t.Errorf("added = %+v", res.Added[0])
	}
}

func TestImportWindow(t *testing.T) {
	w := importOpts().Window()
	if got := w.Start.Format(time.DateTime); got != "2024-05-16 00:00:00" {
		t.Errorf("Start = %s", got)
	}
	if got := w.End.Format(time.DateTime); got != "2025-06-15 23:59:59" {
		t.Errorf("End = %s", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"-PT15M", -15 * time.Minute, false},
		{"PT0S", 0, false},
		{"-P1D", -24 * time.Hour, false},
		{"-P0DT2H30M", -150 * time.Minute, false},
		{"P1W", 7 * 24 * time.Hour, false},
		{"+PT1H", time.Hour, false},
		{"PT", 0, false},
		{"15M", 0, true},
		{"P1H", 0, true},
		{"PT5", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDuration(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTriggerBefore(t *testing.T) {
	tests := map[int]string{
		0:    "-P0DT0H0M",
		15:   "-P0DT0H15M",
		90:   "-P0DT1H30M",
		1500: "-P1DT1H0M",
	}
	for in, want := range tests {
		if got := triggerBefore(in); got != want {
			t.Errorf("triggerBefore(%d) = %q, want %q", in, got, want)
		}
	}
}
