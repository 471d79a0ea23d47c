package prompt_test

import (
	"testing"

	"github.com/tyemirov/swrelease/internal/prompt"
	"github.com/tyemirov/swrelease/internal/version"
)

func TestBumpOptions(t *testing.T) {
	options, err := prompt.BumpOptions("1.9.3")
	if err != nil {
		t.Fatalf("BumpOptions error: %v", err)
	}
	expected := []struct {
		key   string
		value version.Bump
	}{
		{key: "No version update - 1.9.3", value: version.BumpNone},
		{key: "Patch - 1.9.4", value: version.BumpPatch},
		{key: "Minor - 1.10.0", value: version.BumpMinor},
		{key: "Major - 2.0.0", value: version.BumpMajor},
	}
	if len(options) != len(expected) {
		t.Fatalf("expected %d options, got %d", len(expected), len(options))
	}
	for index, option := range options {
		if option.Key != expected[index].key || option.Value != expected[index].value {
			t.Errorf("option %d: expected %s/%s, got %s/%s", index, expected[index].key, expected[index].value, option.Key, option.Value)
		}
	}
}

func TestBumpOptionsRejectsInvalidVersion(t *testing.T) {
	if _, err := prompt.BumpOptions("latest"); err == nil {
		t.Fatalf("expected an error for an invalid version")
	}
}
