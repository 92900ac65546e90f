package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup(t *testing.T) {
	if err := Setup("debug", "json"); err != nil {
		t.Fatal(err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("level = %s, want debug", zerolog.GlobalLevel())
	}
	if err := Setup("loud", "console"); err == nil {
		t.Error("expected an error for an unknown level")
	}
	Setup("info", "console")
}
