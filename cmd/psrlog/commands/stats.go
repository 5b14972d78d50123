package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/psrutils/psrutils-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents    int
	EventsByKind   map[log.Kind]int
	EventsByFormat map[log.Format]int
	Sessions       map[string]*SessionStats
	Failures       int
	TimeRange      struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for one top-level read.
type SessionStats struct {
	FirstSeen   time.Time
	LastSeen    time.Time
	Root        string
	Files       int
	Records     int
	Replaced    int
	Diagnostics int
	MaxDepth    int
	Failed      bool
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind:   make(map[log.Kind]int),
		EventsByFormat: make(map[log.Format]int),
		Sessions:       make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByKind[event.Kind]++
	s.EventsByFormat[event.Format]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Sessions[event.SessionID] = sess
	}
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}
	if event.Depth > sess.MaxDepth {
		sess.MaxDepth = event.Depth
	}

	switch event.Kind {
	case log.KindFileOpen:
		sess.Files++
		if event.Depth == 0 && sess.Root == "" {
			sess.Root = event.File
		}
	case log.KindRecord:
		sess.Records++
		if event.Record != nil && event.Record.Replaced {
			sess.Replaced++
		}
	case log.KindDiagnostic:
		sess.Diagnostics++
	case log.KindFailure:
		sess.Failed = true
		s.Failures++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Read Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for k := log.KindFileOpen; k <= log.KindFailure; k++ {
		if count := stats.EventsByKind[k]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", k.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Format:")
	for _, f := range []log.Format{log.FormatPar, log.FormatTim} {
		if count := stats.EventsByFormat[f]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", f.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			status := "ok"
			if s.stats.Failed {
				status = "FAILED"
			}
			fmt.Fprintf(w, "  [%s] %s %s\n", shortenSessionID(s.id), s.stats.Root, status)
			fmt.Fprintf(w, "           Files: %d (max depth %d)\n", s.stats.Files, s.stats.MaxDepth)
			fmt.Fprintf(w, "           Records: %d", s.stats.Records)
			if s.stats.Replaced > 0 {
				fmt.Fprintf(w, " (%d replaced)", s.stats.Replaced)
			}
			fmt.Fprintln(w)
			if s.stats.Diagnostics > 0 {
				fmt.Fprintf(w, "           Diagnostics: %d\n", s.stats.Diagnostics)
			}
		}
	}

	if stats.Failures > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Failures: %d\n", stats.Failures)
	}
}
