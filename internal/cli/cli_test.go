package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ahinestrog/railway/internal/booking"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RAILWAY_DATA_DIR", "RAILWAY_STATIONS", "RAILWAY_SQLITE_DRIVER", "RAILWAY_LOG_LEVEL",
		"RAILWAY_LOG_FORMAT", "RAILWAY_METRICS_FILE", "RABBITMQ_URL", "RAILWAY_EVENTS_EXCHANGE",
		"RAILWAY_CACHE_SIZE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// keep a stray .env out of reach
	chdir(t, t.TempDir())
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	app := &App{}
	cmd := NewRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--data-dir", dir, "--log-level", "error"}, args...))
	err := cmd.Execute()
	if cerr := app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return out.String(), err
}

func TestInitCreatesStations(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	out, err := run(t, dir, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "2 station databases ready") {
		t.Fatalf("unexpected output %q", out)
	}
	for _, name := range []string{"station1.db", "station2.db"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s not created: %v", name, err)
		}
	}
}

func TestAddListBookFlow(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	out, err := run(t, dir, "add-train", "--name", "Rajdhani", "--source", "Delhi", "--destination", "Mumbai",
		"--sl", "10", "--ac3a", "5", "--ac2a", "4", "--h1", "2", "--general", "1200")
	if err != nil {
		t.Fatalf("add-train: %v", err)
	}
	if !strings.Contains(out, "Train 'Rajdhani' added successfully (id 1)") {
		t.Fatalf("unexpected add output %q", out)
	}

	out, err = run(t, dir, "trains")
	if err != nil {
		t.Fatalf("trains: %v", err)
	}
	if !strings.Contains(out, "Rajdhani") || !strings.Contains(out, "1,200") {
		t.Fatalf("train table missing row: %q", out)
	}

	out, err = run(t, dir, "book", "--train", "1", "--passengers", "Alice, Bob", "--seats", "3", "--class", "SL")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if !strings.Contains(out, "Ticket(s) booked successfully!") {
		t.Fatalf("unexpected book output %q", out)
	}

	out, err = run(t, dir, "book", "--train", "1", "--passengers", "Carol", "--seats", "5", "--class", "SL")
	var ise *booking.InsufficientSeatsError
	if !errors.As(err, &ise) || ise.Passenger != "Carol" {
		t.Fatalf("expected insufficient seats for Carol, got %v (%q)", err, out)
	}

	out, err = run(t, dir, "train", "1")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	fields := strings.Fields(strings.Split(strings.TrimSpace(out), "\n")[1])
	if fields[4] != "4" {
		t.Fatalf("SL column = %q, want 4 (%q)", fields[4], out)
	}

	out, err = run(t, dir, "tickets")
	if err != nil {
		t.Fatalf("tickets: %v", err)
	}
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "Bob") || strings.Contains(out, "Carol") {
		t.Fatalf("unexpected tickets %q", out)
	}
}

func TestAddTrainValidationFails(t *testing.T) {
	isolateEnv(t)
	_, err := run(t, t.TempDir(), "add-train", "--name", "Nameless")
	var ve *booking.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBookUnknownClass(t *testing.T) {
	isolateEnv(t)
	_, err := run(t, t.TempDir(), "book", "--train", "1", "--passengers", "Alice", "--seats", "1", "--class", "AC 1A")
	var ve *booking.ValidationError
	if !errors.As(err, &ve) || ve.Field != "seat class" {
		t.Fatalf("expected seat class validation error, got %v", err)
	}
}

func TestAuditAndStores(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	if _, err := run(t, dir, "add-train", "--name", "Tejas", "--source", "A", "--destination", "B", "--h1", "3"); err != nil {
		t.Fatalf("add-train: %v", err)
	}

	out, err := run(t, dir, "audit", "--strict")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !strings.Contains(out, "All stations agree.") {
		t.Fatalf("unexpected audit %q", out)
	}

	out, err = run(t, dir, "stores")
	if err != nil {
		t.Fatalf("stores: %v", err)
	}
	if !strings.Contains(out, "station1.db") || !strings.Contains(out, "kB") {
		t.Fatalf("unexpected stores %q", out)
	}
}

func TestCustomStationsAndMetricsFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	prom := filepath.Join(dir, "railway.prom")

	_, err := run(t, dir, "--stations", "north.db,south.db,east.db", "--metrics-file", prom,
		"add-train", "--name", "Tejas", "--source", "A", "--destination", "B", "--h1", "3")
	if err != nil {
		t.Fatalf("add-train: %v", err)
	}
	for _, name := range []string{"north.db", "south.db", "east.db"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s not created: %v", name, err)
		}
	}
	b, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(b), "railway_trains_added_total 1") {
		t.Fatalf("metrics file missing counter:\n%s", b)
	}
}

func TestClasses(t *testing.T) {
	isolateEnv(t)
	out, err := run(t, t.TempDir(), "classes")
	if err != nil {
		t.Fatalf("classes: %v", err)
	}
	for _, want := range []string{"SL", "AC 3A", "AC 2A", "H1", "General", "general_seats"} {
		if !strings.Contains(out, want) {
			t.Errorf("classes output missing %q", want)
		}
	}
}

func TestStoreFreeCommandsLeaveStationsAlone(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "station1.db")
	legacy := []byte("legacy station data, not sqlite")
	if err := os.WriteFile(path, legacy, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, args := range [][]string{{"help", "init"}, {"classes"}, {"completion", "bash"}} {
		if _, err := run(t, dir, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("%v: station1.db gone: %v", args, err)
		}
		if !bytes.Equal(got, legacy) {
			t.Fatalf("%v rewrote station1.db (%d bytes)", args, len(got))
		}
		if _, err := os.Stat(filepath.Join(dir, "station2.db")); err == nil {
			t.Fatalf("%v created station2.db", args)
		}
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
