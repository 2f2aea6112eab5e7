package layout

import (
	"path/filepath"
	"testing"

	"crossforge/internal/testkit"
)

const gccVer = "13.2.0"

func TestNormalizeCollapsesTargetSubdir(t *testing.T) {
	stage := t.TempDir()
	target := "aarch64-linux-gnu"
	testkit.WriteTree(t, stage, map[string]string{
		"aarch64-linux-gnu/lib/libstdc++.a":      "lib",
		"aarch64-linux-gnu/include/c++/13.2.0/vector": "hdr",
	})
	if err := Normalize(stage, target, gccVer); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	testkit.TreeEquals(t, stage, []string{
		"lib/libstdc++.a",
		"include/vector",
	})
	testkit.MustNotExist(t, filepath.Join(stage, target))
}

func TestNormalizeTolerantWhenHostEqualsTarget(t *testing.T) {
	// With identical host and target triplets the nested directory never
	// appears; normalization must not fail on its absence.
	stage := t.TempDir()
	testkit.WriteTree(t, stage, map[string]string{
		"lib/libstdc++.a": "lib",
	})
	if err := Normalize(stage, "x86_64-linux-gnu", gccVer); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	testkit.TreeEquals(t, stage, []string{"lib/libstdc++.a"})
}

func TestNormalizeMergesLib64(t *testing.T) {
	stage := t.TempDir()
	testkit.WriteTree(t, stage, map[string]string{
		"lib64/libstdc++.a": "a",
		"lib64/libatomic.a": "b",
		"lib/libgcc.a":      "c",
	})
	if err := Normalize(stage, "powerpc64le-linux-gnu", gccVer); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	testkit.TreeEquals(t, stage, []string{
		"lib/libatomic.a",
		"lib/libgcc.a",
		"lib/libstdc++.a",
	})
	testkit.MustNotExist(t, filepath.Join(stage, "lib64"))
}

func TestNormalizeMergesLib64WithoutExistingLib(t *testing.T) {
	stage := t.TempDir()
	testkit.WriteTree(t, stage, map[string]string{
		"lib64/libstdc++.a": "a",
	})
	if err := Normalize(stage, "s390x-linux-gnu", gccVer); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	testkit.TreeEquals(t, stage, []string{"lib/libstdc++.a"})
}

func TestNormalizeFlattensVersionedInclude(t *testing.T) {
	stage := t.TempDir()
	testkit.WriteTree(t, stage, map[string]string{
		"include/c++/13.2.0/vector":              "v",
		"include/c++/13.2.0/bits/stl_vector.h":   "sv",
		"include/c++/13.2.0/aarch64-linux-gnu/bits/c++config.h": "cfg",
	})
	if err := Normalize(stage, "x86_64-linux-gnu", gccVer); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	testkit.TreeEquals(t, stage, []string{
		"include/aarch64-linux-gnu/bits/c++config.h",
		"include/bits/stl_vector.h",
		"include/vector",
	})
	testkit.MustNotExist(t, filepath.Join(stage, "include", "c++"))
}

func TestNormalizeKeepsExtraEntriesUnderIncludeCxx(t *testing.T) {
	// Toolchains may drop extra files next to the version directory; the
	// flatten must carry on and leave them where they are.
	stage := t.TempDir()
	testkit.WriteTree(t, stage, map[string]string{
		"include/c++/13.2.0/vector": "v",
		"include/c++/README":        "notes",
	})
	if err := Normalize(stage, "x86_64-linux-gnu", gccVer); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	testkit.TreeEquals(t, stage, []string{
		"include/c++/README",
		"include/vector",
	})
}

func TestNormalizeAllShapesTogether(t *testing.T) {
	stage := t.TempDir()
	target := "aarch64-linux-gnu"
	testkit.WriteTree(t, stage, map[string]string{
		"aarch64-linux-gnu/lib64/libstdc++.a":        "a",
		"aarch64-linux-gnu/lib/libgcc.a":             "b",
		"aarch64-linux-gnu/include/c++/13.2.0/memory": "m",
	})
	if err := Normalize(stage, target, gccVer); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	testkit.TreeEquals(t, stage, []string{
		"include/memory",
		"lib/libgcc.a",
		"lib/libstdc++.a",
	})
}

func TestMergeDirRefusesFileCollision(t *testing.T) {
	stage := t.TempDir()
	testkit.WriteTree(t, stage, map[string]string{
		"lib64/libstdc++.a": "new",
		"lib/libstdc++.a":   "old",
	})
	err := Normalize(stage, "s390x-linux-gnu", gccVer)
	if err == nil {
		t.Fatal("expected merge collision error")
	}
}
