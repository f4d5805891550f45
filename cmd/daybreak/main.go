package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwhelan/daybreak/internal/config"
	"github.com/mwhelan/daybreak/internal/export"
	"github.com/mwhelan/daybreak/internal/ingest"
	"github.com/mwhelan/daybreak/internal/insights"
	"github.com/mwhelan/daybreak/internal/quotes"
	"github.com/mwhelan/daybreak/internal/record"
	"github.com/mwhelan/daybreak/internal/risk"
	"github.com/mwhelan/daybreak/internal/stats"
	"github.com/mwhelan/daybreak/internal/store"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("daybreak v%s\n", version)
		return
	case "help", "--help", "-h":
		usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		fatal("open store: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	args := os.Args[2:]

	switch os.Args[1] {
	case "checkin":
		runCheckIn(ctx, repo, args)
	case "meeting":
		runMeeting(ctx, repo, args)
	case "meditate":
		runMeditate(ctx, repo, args)
	case "risk":
		runRisk(ctx, repo, cfg, args)
	case "insights":
		runInsights(ctx, repo)
	case "stats":
		runStats(ctx, repo)
	case "export":
		runExport(ctx, repo, cfg, args)
	case "import":
		runImport(ctx, repo, args)
	case "quote":
		fmt.Println(formatQuote(quotes.QuoteOfDay(time.Now().UTC().Format("2006-01-02"))))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func runCheckIn(ctx context.Context, repo store.Repository, args []string) {
	craving := intFlag(args, "--craving", -1)
	mood := intFlag(args, "--mood", -1)
	if craving < 0 || mood < 0 {
		fatal("usage: daybreak checkin --craving <0-10> --mood <0-10> [--triggers a,b]")
	}

	c := record.CheckIn{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Craving:   craving,
		Mood:      mood,
	}
	if raw := flagValue(args, "--triggers"); raw != "" {
		c.Triggers = strings.Split(raw, ",")
	}

	if err := repo.AddCheckIn(ctx, c); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("recorded check-in %s\n", c.ID)
}

func runMeeting(ctx context.Context, repo store.Repository, args []string) {
	m := record.MeetingAttendance{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Duration:  time.Duration(intFlag(args, "--minutes", 60)) * time.Minute,
		Category:  flagValue(args, "--category"),
	}
	if m.Category == "" {
		m.Category = "aa"
	}
	if err := repo.AddMeeting(ctx, m); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("recorded meeting %s (%s, %s)\n", m.ID, m.Category, m.Duration)
}

func runMeditate(ctx context.Context, repo store.Repository, args []string) {
	m := record.MeditationSession{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Duration:  time.Duration(intFlag(args, "--minutes", 10)) * time.Minute,
		Technique: flagValue(args, "--technique"),
	}
	if m.Technique == "" {
		m.Technique = "breathing"
	}
	if err := repo.AddMeditation(ctx, m); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("recorded meditation %s (%s, %s)\n", m.ID, m.Technique, m.Duration)
}

func runRisk(ctx context.Context, repo store.Repository, cfg config.Config, args []string) {
	windowDays := intFlag(args, "--window", cfg.Analytics.WindowDays)

	in, err := store.BuildRiskInput(ctx, repo, windowDays, time.Now().UTC())
	if err != nil {
		fatal("%v", err)
	}
	assessment, err := risk.Assess(in)
	if err != nil {
		fatal("assess: %v", err)
	}

	fmt.Printf("risk: %d/100 (%s, confidence %s)\n", assessment.Score, assessment.Level, assessment.Confidence)
	for _, f := range assessment.Factors {
		fmt.Printf("  %-16s +%.1f\n", f.ID, f.Weight)
	}
	if len(assessment.Factors) == 0 {
		fmt.Println("  no contributing factors in the current window")
	}
}

func runInsights(ctx context.Context, repo store.Repository) {
	cis, err := repo.CheckIns(ctx)
	if err != nil {
		fatal("%v", err)
	}
	mts, err := repo.Meetings(ctx)
	if err != nil {
		fatal("%v", err)
	}
	mds, err := repo.Meditations(ctx)
	if err != nil {
		fatal("%v", err)
	}

	result, err := insights.Generate(cis, mts, mds)
	if err != nil {
		fatal("generate: %v", err)
	}
	if len(result.Insights) == 0 {
		fmt.Println("no actionable signal yet; keep checking in")
		return
	}
	for _, in := range result.Insights {
		fmt.Printf("[%s] %s (evidence: %s)\n", in.Category, in.MessageID, strings.Join(in.Evidence, ", "))
	}
}

func runStats(ctx context.Context, repo store.Repository) {
	cis, err := repo.CheckIns(ctx)
	if err != nil {
		fatal("%v", err)
	}
	mts, err := repo.Meetings(ctx)
	if err != nil {
		fatal("%v", err)
	}
	mds, err := repo.Meditations(ctx)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Print(stats.Format(stats.Compute(cis, mts, mds)))
}

func runExport(ctx context.Context, repo store.Repository, cfg config.Config, args []string) {
	dir := flagValue(args, "--dir")
	if dir == "" {
		dir = cfg.Export.Dir
	}
	path, err := export.Export(ctx, repo, dir)
	if err != nil {
		fatal("export: %v", err)
	}
	fmt.Printf("exported: %s\n", path)
}

func runImport(ctx context.Context, repo store.Repository, args []string) {
	if len(args) < 1 {
		fatal("usage: daybreak import <file.jsonl>")
	}
	res, err := ingest.File(ctx, repo, args[0], nil)
	if err != nil {
		fatal("import: %v", err)
	}
	fmt.Printf("imported: %d check-ins, %d meetings, %d meditations (%d skipped)\n",
		res.CheckIns, res.Meetings, res.Meditations, res.Skipped)
}

func formatQuote(q quotes.Quote) string {
	if q.Author == "" {
		return fmt.Sprintf("%q", q.Text)
	}
	return fmt.Sprintf("%q — %s", q.Text, q.Author)
}

func usage() {
	fmt.Fprintf(os.Stderr, `daybreak v%s — recovery tracker

Usage:
  daybreak checkin --craving <0-10> --mood <0-10> [--triggers a,b]
  daybreak meeting [--category aa] [--minutes 60]
  daybreak meditate [--technique breathing] [--minutes 10]
  daybreak risk [--window <days>]       Relapse-risk assessment
  daybreak insights                     Behavioral insights from history
  daybreak stats                        Aggregate history summary
  daybreak export [--dir <dir>]         Compressed JSONL backup
  daybreak import <file.jsonl>          Ingest a record file
  daybreak quote                        Quote of the day
  daybreak version                      Print version
  daybreak help                         Show this help

Configuration: ~/.config/daybreak/config.toml
`, version)
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func intFlag(args []string, flag string, fallback int) int {
	raw := flagValue(args, flag)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fatal("%s expects a number, got %q", flag, raw)
	}
	return n
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "daybreak: "+format+"\n", args...)
	os.Exit(1)
}
