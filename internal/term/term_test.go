package term

import (
	"os"
	"testing"

	"github.com/fatih/color"

	"github.com/backmassage/skipfix/internal/config"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })

	Configure(config.ColorAlways)
	if color.NoColor {
		t.Fatal("ColorAlways should enable colors")
	}
	if got := Red.Sprint("x"); got == "x" {
		t.Errorf("colored Sprint returned plain text %q", got)
	}

	Configure(config.ColorNever)
	if !color.NoColor {
		t.Fatal("ColorNever should disable colors")
	}
	if got := Red.Sprint("x"); got != "x" {
		t.Errorf("plain Sprint = %q, want %q", got, "x")
	}
}

func TestResolve_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if resolve(config.ColorAuto) {
		t.Error("auto mode should honour NO_COLOR")
	}
	if !resolve(config.ColorAlways) {
		t.Error("always mode ignores NO_COLOR")
	}
}

func TestIsTerminal_File(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("regular file reported as terminal")
	}
	if IsTerminal(nil) {
		t.Error("nil file reported as terminal")
	}
}
