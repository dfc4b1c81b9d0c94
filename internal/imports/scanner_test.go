package imports

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/saeedalam/sketchpp/pkg/types"
)

func TestFindIncludes(t *testing.T) {
	code := `#include <Servo.h>
  #include "config.h"
#include<Wire.h>
#include <Servo.h>
int x; #include <NotADirective.h>
void setup() {}
`
	got := FindIncludes(code)
	want := []string{"Servo.h", "config.h", "Wire.h", "Servo.h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindIncludes = %v, want %v", got, want)
	}
}

func TestFindIncludesSkipsLineComments(t *testing.T) {
	got := FindIncludes("// #include <Fake.h>\n#include <Real.h>\n")
	want := []string{"Real.h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindIncludes = %v, want %v", got, want)
	}
}

// Raw scans do not know about block comments.
func TestFindIncludesRawBlockComment(t *testing.T) {
	got := FindIncludes("/*\n#include <Fake.h>\n*/\n#include <Real.h>\n")
	want := []string{"Fake.h", "Real.h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindIncludes = %v, want %v", got, want)
	}
}

func TestFindIncludesTrailingComment(t *testing.T) {
	got := FindIncludes(`#include "lib/a.h" // see "notes"`)
	want := []string{"lib/a.h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindIncludes = %v, want %v", got, want)
	}
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Blink.ino")
	content := "#include <Servo.h>\n\n#include \"pins.h\"\nvoid setup() {}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	results, err := ScanFile(path)
	if err != nil {
		t.Fatalf("ScanFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 includes, got %d", len(results))
	}

	first := results[0]
	if first.Imported != "Servo.h" || first.ImportType != types.IncludeSystem || first.Line != 1 {
		t.Errorf("Unexpected first include: %+v", first)
	}
	second := results[1]
	if second.Imported != "pins.h" || second.ImportType != types.IncludeLocal || second.Line != 3 {
		t.Errorf("Unexpected second include: %+v", second)
	}
	if second.Source != path {
		t.Errorf("Expected source %s, got %s", path, second.Source)
	}
	if second.Raw != `#include "pins.h"` {
		t.Errorf("Unexpected raw line %q", second.Raw)
	}
}

func TestScanFileMissing(t *testing.T) {
	if _, err := ScanFile(filepath.Join(t.TempDir(), "missing.ino")); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestHeaders(t *testing.T) {
	results := ScanText("a.ino", "#include <A.h>\n#include <B.h>\n#include <A.h>\n")
	got := Headers(results)
	want := []string{"A.h", "B.h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Headers = %v, want %v", got, want)
	}
}
