package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"autobot/internal/config"
	"autobot/internal/group"
	"autobot/internal/services"
	"autobot/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithSite())
	for _, dir := range []string{cfg.Paths.GroupsRoot, cfg.Paths.SiteDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestSetupUpkeepAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"semester-setup", "core", "sp24"}, env.configPath, "")
	if err != nil {
		t.Fatalf("semester-setup: %v", err)
	}
	requireContains(t, out, "Semester core/sp24 ready")

	root := filepath.Join(env.cfg.Paths.GroupsRoot, "core", "sp24")
	testsupport.WriteSemester(t, root, testsupport.ThreeMeetings, testsupport.Overhead)

	out, _, err = runCLI(t, []string{"semester-upkeep", "core", "sp24", "--all"}, env.configPath, "")
	if err != nil {
		t.Fatalf("semester-upkeep: %v\n%s", err, out)
	}
	requireContains(t, out, "[1/3] 02/01/2024 ~ Kickoff")
	requireContains(t, out, "[3/3] 03/05/2024 ~ Intro")
	requireContains(t, out, "created=9")
	if strings.Index(out, "Kickoff") > strings.Index(out, "Intro") {
		t.Fatalf("meetings out of chronological order:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"semester-upkeep", "core", "sp24", "--name", "setup"}, env.configPath, "")
	if err != nil {
		t.Fatalf("second upkeep: %v", err)
	}
	requireContains(t, out, "[1/1] 02/01/2024 ~ Setup")
	if strings.Contains(out, "created=") {
		t.Fatalf("second run must not create anything:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"history", "core", "sp24"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, `name~"setup"`)
}

func TestUpkeepInitializesMissingSyllabus(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.cfg.Paths.GroupsRoot, "gbm", "fa24")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"semester-upkeep", "gbm", "fa24", "--all"}, env.configPath, "")
	if err != nil {
		t.Fatalf("semester-upkeep: %v", err)
	}
	requireContains(t, out, "No syllabus found")
	if strings.Contains(out, " INFO ") {
		t.Fatalf("log lines leaked to stdout:\n%s", out)
	}
	logData, err := os.ReadFile(filepath.Join(env.cfg.Paths.StateDir, "logs", "autobot.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	requireContains(t, string(logData), "syllabus initialised")
}

func TestUpkeepPointsAtSetupForMissingSemester(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"semester-upkeep", "gbm", "fa24", "--all"}, env.configPath, "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, err.Error(), "run semester-setup gbm fa24 first")
	if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.GroupsRoot, "gbm", "fa24")); !os.IsNotExist(statErr) {
		t.Fatalf("semester root must not be created, stat err = %v", statErr)
	}
}

func TestUpkeepRequiresExactlyOneSelector(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"semester-upkeep", "core", "sp24"}, env.configPath, ""); err == nil {
		t.Fatal("expected error without a selector")
	}
	if _, _, err := runCLI(t, []string{"semester-upkeep", "core", "sp24", "--all", "--name", "x"}, env.configPath, ""); err == nil {
		t.Fatal("expected error with two selectors")
	}
}

func TestSetupDeclineIsSilent(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.cfg.Paths.GroupsRoot, "core", "sp24")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}

	out, stderr, err := runCLI(t, []string{"semester-setup", "core", "sp24"}, env.configPath, "n\n")
	if !errors.Is(err, services.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if exitCode(err) != 0 {
		t.Fatal("declined confirmation must exit 0")
	}
	requireContains(t, stderr, "[y/N]")
	if strings.Contains(out, "ready") {
		t.Fatalf("unexpected output %q", out)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Fatalf("decline wrote %d files", len(entries))
	}
}

func TestUnknownGroup(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"doctor", "chess"}, env.configPath, "")
	if !errors.Is(err, group.ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestGroupsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"groups"}, env.configPath, "")
	if err != nil {
		t.Fatalf("groups: %v", err)
	}
	requireContains(t, out, "data-science")
	requireContains(t, out, "Data Science")
}

func TestDoctorReportsMissingSyllabus(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor", "core", "sp24"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected doctor to fail without semester sources")
	}
	requireContains(t, out, "Groups root")
	requireContains(t, out, "[ERROR] missing")
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 {
		t.Fatal("nil error must exit 0")
	}
	if exitCode(services.Wrap(services.ErrDeclined, "bootstrap", "confirm", "x", nil)) != 0 {
		t.Fatal("declined must exit 0")
	}
}
