package common

import (
	"testing"
)

func TestVersionStringNoPre(t *testing.T) {
	var version = Version{
		Major:      1,
		Minor:      2,
		Patch:      3,
		Prerelease: "",
	}

	actual := version.String()
	expected := "1.2.3"

	if actual != expected {
		t.Fatalf("Incorrect version string. Actual: %s, expected: %s", actual, expected)
	}
}

func TestVersionStringPre(t *testing.T) {
	version := Version{
		Major:      1,
		Minor:      2,
		Patch:      3,
		Prerelease: "-pre",
	}

	actual := version.String()
	expected := "1.2.3-pre"

	if actual != expected {
		t.Fatalf("Incorrect version string. Actual: %s, expected: %s", actual, expected)
	}
}

func TestAppVersion(t *testing.T) {
	if GetAppVersion().String() == "" {
		t.Fatal("empty application version")
	}
}
