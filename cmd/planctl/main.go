package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"ironplan/internal/client"
	"ironplan/internal/domain"
	"ironplan/internal/execution"
	"ironplan/internal/planner"
)

func main() {
	// Quiet structured logging for CLI use
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	baseURL := os.Getenv("IRONPLAN_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	c := client.New(baseURL, logger)
	if token := os.Getenv("IRONPLAN_TOKEN"); token != "" {
		c.SetToken(token)
	}

	ctx := context.Background()

	switch command {
	case "register":
		handleRegister(ctx, c)
	case "login":
		handleLogin(ctx, c)
	case "add":
		handleAdd(ctx, c)
	case "library":
		handleLibrary(ctx, c)
	case "week":
		handleWeek(ctx, c)
	case "plan":
		handlePlan(ctx, c)
	case "lock":
		handleLock(ctx, c, true)
	case "unlock":
		handleLock(ctx, c, false)
	case "lock-tomorrow":
		handleLockTomorrow(ctx, c, true)
	case "unlock-tomorrow":
		handleLockTomorrow(ctx, c, false)
	case "remove":
		handleRemove(ctx, c)
	case "show":
		handleShow(ctx, c)
	case "log":
		handleLog(ctx, c)
	case "toggle":
		handleToggle(ctx, c)
	case "finish":
		handleFinish(ctx, c)
	case "rest":
		handleRest()
	case "export":
		handleExport(ctx, c)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`planctl - IronPlan planner CLI

Usage:
  planctl <command> [options]

Commands:
  register <email> <password>        Create an account
  login <email> <password>           Log in, prints a token for IRONPLAN_TOKEN
  add <text>                         Parse free text into a workout template
  library                            List workout templates, newest first
  week [date]                        Show the week containing date (default today)
  plan <date> <workout-id>           Assign a workout to a date
  lock <date>                        Lock a planned day
  unlock <date>                      Unlock a locked day
  lock-tomorrow                      Lock tomorrow's planned workout
  unlock-tomorrow                    Unlock tomorrow's workout
  remove <date>                      Clear an unlocked planned day
  show <date>                        Show the day's set grid and saved logs
  log <date> <exercise> <set> [reps] [weight]
                                     Save one set log
  toggle <date> <exercise> <set>     Toggle a set's completed flag
  finish <date> [--yes]              Mark the day completed
  rest [seconds]                     Run a rest countdown (default 90)
  export                             Export all data, prints a download URL
  help                               Show this help message

Environment Variables:
  IRONPLAN_URL     - Server base URL (default: http://localhost:8080)
  IRONPLAN_TOKEN   - Bearer token from 'planctl login'`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func requireArgs(n int, usage string) []string {
	if len(os.Args) < 2+n {
		fmt.Fprintf(os.Stderr, "Usage: planctl %s\n", usage)
		os.Exit(1)
	}
	return os.Args[2:]
}

func handleRegister(ctx context.Context, c *client.Client) {
	args := requireArgs(2, "register <email> <password>")
	user, err := c.Register(ctx, args[0], args[1])
	if err != nil {
		fail(err)
	}
	fmt.Printf("✓ Registered %s (id %s)\n", user.Email, user.ID)
}

func handleLogin(ctx context.Context, c *client.Client) {
	args := requireArgs(2, "login <email> <password>")
	resp, err := c.Login(ctx, args[0], args[1])
	if err != nil {
		fail(err)
	}
	fmt.Printf("✓ Logged in as %s\n\nexport IRONPLAN_TOKEN=%s\n", resp.User.Email, resp.Token)
}

func handleAdd(ctx context.Context, c *client.Client) {
	args := requireArgs(1, "add <text>")
	workout, err := c.CreateWorkout(ctx, args[0])
	if err != nil {
		fail(err)
	}
	fmt.Printf("✓ Created workout '%s' (id %s)\n", workout.Title, workout.ID)
	if workout.MuscleGroups != "" {
		fmt.Printf("  Muscle groups: %s\n", workout.MuscleGroups)
	}
	fmt.Printf("  Exercises: %d\n", workout.ExerciseCount)
}

func handleLibrary(ctx context.Context, c *client.Client) {
	workouts, err := c.ListWorkouts(ctx)
	if err != nil {
		fail(err)
	}
	if len(workouts) == 0 {
		fmt.Println("No workouts yet. Create one with: planctl add \"<description>\"")
		return
	}
	for _, w := range workouts {
		fmt.Printf("%s  %s", w.ID, w.Title)
		if w.Category != "" {
			fmt.Printf("  [%s]", w.Category)
		}
		fmt.Printf("  (%d exercises)\n", w.ExerciseCount)
	}
}

func handleWeek(ctx context.Context, c *client.Client) {
	ref := domain.Today()
	if len(os.Args) >= 3 {
		ref = os.Args[2]
	}

	store := planner.NewStore(c)
	if err := store.LoadWeek(ctx, ref); err != nil {
		fail(err)
	}

	for _, date := range store.WeekDates() {
		state := store.StateOf(date)
		line := fmt.Sprintf("%s  %-10s", date, state)
		if day, ok := store.Day(date); ok && day.Workout != nil {
			line += "  " + day.Workout.Title
		}
		if date == domain.Today() {
			line += "  ← today"
		}
		fmt.Println(line)
	}
	if store.CanLockTomorrow() {
		fmt.Println("\nTomorrow is planned but unlocked. Lock it with: planctl lock-tomorrow")
	}
}

func handlePlan(ctx context.Context, c *client.Client) {
	args := requireArgs(2, "plan <date> <workout-id>")
	day, err := c.Assign(ctx, args[0], args[1])
	if err != nil {
		fail(err)
	}
	title := day.WorkoutID
	if day.Workout != nil {
		title = day.Workout.Title
	}
	fmt.Printf("✓ Planned '%s' for %s\n", title, day.PlannedDate)
}

func handleLock(ctx context.Context, c *client.Client, locked bool) {
	verb := "lock"
	if !locked {
		verb = "unlock"
	}
	args := requireArgs(1, verb+" <date>")
	day, err := c.SetLocked(ctx, args[0], locked)
	if err != nil {
		fail(err)
	}
	fmt.Printf("✓ %s is now %s\n", day.PlannedDate, day.State)
}

func handleLockTomorrow(ctx context.Context, c *client.Client, locked bool) {
	store := planner.NewStore(c)
	if err := store.LoadWeek(ctx, domain.Tomorrow()); err != nil {
		fail(err)
	}
	if err := store.LockTomorrow(ctx, locked); err != nil {
		fail(err)
	}
	verb := "Locked"
	if !locked {
		verb = "Unlocked"
	}
	fmt.Printf("✓ %s %s\n", verb, domain.Tomorrow())
}

func handleRemove(ctx context.Context, c *client.Client) {
	args := requireArgs(1, "remove <date>")
	if err := c.Remove(ctx, args[0]); err != nil {
		if errors.Is(err, domain.ErrDayLocked) {
			fmt.Fprintln(os.Stderr, "Error: day is locked; unlock it first")
			os.Exit(1)
		}
		fail(err)
	}
	fmt.Printf("✓ Cleared %s\n", args[0])
}

func newSession(ctx context.Context, c *client.Client, date string) *execution.Session {
	session, err := execution.NewSession(c, date)
	if err != nil {
		fail(err)
	}
	if err := session.Load(ctx); err != nil {
		fail(err)
	}
	return session
}

func handleShow(ctx context.Context, c *client.Client) {
	args := requireArgs(1, "show <date>")
	session := newSession(ctx, c, args[0])

	day := session.Day()
	title := "(workout)"
	if day.Workout != nil {
		title = day.Workout.Title
	}
	fmt.Printf("%s  %s  [%s]\n\n", day.PlannedDate, title, day.State)

	for _, e := range session.Entries() {
		mark := " "
		if e.Completed {
			mark = "✓"
		}
		fmt.Printf("[%s] %s set %d: %s reps @ %s\n", mark, e.Key.Exercise, e.Key.Set, orDash(e.Reps), orDash(e.Weight))
	}
	fmt.Printf("\n%d set(s) completed\n", session.CompletedCount())
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func handleLog(ctx context.Context, c *client.Client) {
	args := requireArgs(3, "log <date> <exercise> <set> [reps] [weight]")
	set, err := strconv.Atoi(args[2])
	if err != nil {
		fail(fmt.Errorf("invalid set number: %s", args[2]))
	}

	session := newSession(ctx, c, args[0])
	key := execution.EntryKey{Exercise: args[1], Set: set}
	if len(args) >= 4 {
		if err := session.EditReps(key, args[3]); err != nil {
			fail(err)
		}
	}
	if len(args) >= 5 {
		if err := session.EditWeight(key, args[4]); err != nil {
			fail(err)
		}
	}
	if err := session.SaveEntry(ctx, key); err != nil {
		fail(err)
	}
	fmt.Printf("✓ Saved %s set %d\n", key.Exercise, key.Set)
}

func handleToggle(ctx context.Context, c *client.Client) {
	args := requireArgs(3, "toggle <date> <exercise> <set>")
	set, err := strconv.Atoi(args[2])
	if err != nil {
		fail(fmt.Errorf("invalid set number: %s", args[2]))
	}

	session := newSession(ctx, c, args[0])
	key := execution.EntryKey{Exercise: args[1], Set: set}
	if err := session.ToggleSet(ctx, key); err != nil {
		fail(err)
	}
	entry, _ := session.Entry(key)
	state := "not completed"
	if entry.Completed {
		state = "completed"
	}
	fmt.Printf("✓ %s set %d is now %s\n", key.Exercise, key.Set, state)
}

func handleFinish(ctx context.Context, c *client.Client) {
	args := requireArgs(1, "finish <date> [--yes]")
	confirmed := len(args) >= 2 && args[1] == "--yes"

	session := newSession(ctx, c, args[0])
	err := session.Finish(ctx, confirmed)
	if errors.Is(err, execution.ErrConfirmationRequired) {
		fmt.Fprintln(os.Stderr, "No sets are marked completed. Finish anyway with: planctl finish "+args[0]+" --yes")
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}
	fmt.Printf("✓ %s finished\n", args[0])
}

func handleRest() {
	seconds := 90
	if len(os.Args) >= 3 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			fail(fmt.Errorf("invalid rest duration: %s", os.Args[2]))
		}
		seconds = n
	}

	done := make(chan struct{})
	timer := execution.NewRestTimer(time.Second,
		func(remaining int) { fmt.Printf("\rRest: %3ds remaining", remaining) },
		func() { close(done) },
	)
	timer.Start(seconds)
	<-done
	fmt.Println("\r✓ Rest complete.      ")
}

func handleExport(ctx context.Context, c *client.Client) {
	url, err := c.Export(ctx)
	if err != nil {
		fail(err)
	}
	fmt.Println("✓ Export ready:")
	fmt.Println(url)
}
