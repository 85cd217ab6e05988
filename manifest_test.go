package vrcget

import (
	"bytes"
	"strings"
	"testing"

	"github.com/CirnoV/vrc-get/internal/test"
	"github.com/CirnoV/vrc-get/vps"
)

const basicManifest = `{
  "dependencies": {
    "com.anatawa12.avatar-optimizer": {
      "version": "1.7.0"
    },
    "com.vrchat.avatars": {
      "version": "^3.5.0"
    }
  },
  "locked": {
    "com.anatawa12.avatar-optimizer": {
      "version": "1.7.0",
      "dependencies": {
        "com.vrchat.avatars": ">=3.4.0"
      }
    },
    "com.vrchat.avatars": {
      "version": "3.5.0",
      "dependencies": {
        "com.vrchat.base": "3.5.0"
      }
    },
    "com.vrchat.base": {
      "version": "3.5.0"
    }
  }
}
`

func TestReadManifest(t *testing.T) {
	m, err := ReadManifest(strings.NewReader(basicManifest))
	if err != nil {
		t.Fatalf("ReadManifest errored: %s", err)
	}

	r, ok := m.GetDependency("com.vrchat.avatars")
	if !ok || r.String() != "^3.5.0" {
		t.Errorf("GetDependency(com.vrchat.avatars) = (%v, %t), want ^3.5.0", r, ok)
	}
	if _, ok := m.GetDependency("com.vrchat.base"); ok {
		t.Error("com.vrchat.base should not be a declared dependency")
	}

	lk, ok := m.GetLocked("com.anatawa12.avatar-optimizer")
	if !ok || lk.Version.String() != "1.7.0" {
		t.Fatalf("GetLocked(com.anatawa12.avatar-optimizer) = (%v, %t)", lk, ok)
	}
	dep, ok := lk.Dependencies["com.vrchat.avatars"]
	if !ok || dep.String() != ">=3.4.0" {
		t.Errorf("locked dependency range = (%v, %t), want >=3.4.0", dep, ok)
	}

	if !m.IsLocked("com.vrchat.base") || m.IsLocked("com.example.absent") {
		t.Error("IsLocked answers wrong")
	}

	var names []string
	for _, lk := range m.AllLocked() {
		names = append(names, lk.Name)
	}
	want := []string{"com.anatawa12.avatar-optimizer", "com.vrchat.avatars", "com.vrchat.base"}
	if d, eq := test.Diff(names, want); !eq {
		t.Errorf("AllLocked order wrong: %s", d)
	}
}

func TestReadManifestRejectsBadInput(t *testing.T) {
	bad := []string{
		`{`,
		`{"dependencies": {"com.example.a": {"version": "not @ a range"}}}`,
		`{"locked": {"com.example.a": {"version": "1.0"}}}`,
	}
	for _, body := range bad {
		if _, err := ReadManifest(strings.NewReader(body)); err == nil {
			t.Errorf("ReadManifest(%q) should have errored", body)
		}
	}
}

func TestManifestWriteRoundTrip(t *testing.T) {
	m, err := ReadManifest(strings.NewReader(basicManifest))
	if err != nil {
		t.Fatalf("ReadManifest errored: %s", err)
	}

	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		t.Fatalf("Write errored: %s", err)
	}
	if d, eq := test.DiffStrings(buf.String(), basicManifest); !eq {
		t.Errorf("write did not round-trip:\n%s", d)
	}
}

func TestManifestEmptyWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := NewManifest().Write(&buf); err != nil {
		t.Fatalf("Write errored: %s", err)
	}
	want := "{\n  \"dependencies\": {},\n  \"locked\": {}\n}\n"
	if d, eq := test.DiffStrings(buf.String(), want); !eq {
		t.Errorf("empty manifest encoding wrong:\n%s", d)
	}
}

func TestManifestMutators(t *testing.T) {
	m := NewManifest()
	m.addDependency("com.example.a", vps.MustRange("1.0.0"))
	m.addLocked(vps.NewPackageInfo("com.example.a", vps.MustVersion("1.0.0"), map[string]vps.Range{
		"com.example.b": vps.MustRange("^1.0.0"),
	}))
	m.addLocked(vps.NewPackageInfo("com.example.b", vps.MustVersion("1.2.0"), nil))

	c := m.clone()
	c.removePackage("com.example.a")
	if c.IsLocked("com.example.a") {
		t.Error("removePackage left the locked entry")
	}
	if _, ok := c.GetDependency("com.example.a"); ok {
		t.Error("removePackage left the declaration")
	}

	// The original is untouched by edits to the clone.
	if !m.IsLocked("com.example.a") {
		t.Error("clone shares state with the original")
	}
	lk, _ := m.GetLocked("com.example.a")
	if r := lk.Dependencies["com.example.b"]; r == nil || r.String() != "^1.0.0" {
		t.Errorf("locked dependency edges not recorded: %v", lk.Dependencies)
	}
}
