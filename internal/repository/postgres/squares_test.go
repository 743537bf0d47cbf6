package postgres

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// ROW is a reserved word in PostgreSQL, so the squares column must appear as
// "row" in every statement. A bare occurrence is a syntax error the moment
// the query hits a real server, which fake-backed unit tests never reach.
func TestStatementsQuoteReservedRowColumn(t *testing.T) {
	rawString := regexp.MustCompile("`[^`]*`")
	bareRow := regexp.MustCompile(`(^|[^"\w])row([^"\w]|$)`)

	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}

	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}

		src, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}

		for _, lit := range rawString.FindAllString(string(src), -1) {
			if !strings.Contains(lit, "squares") {
				continue
			}
			if bareRow.MatchString(lit) {
				t.Errorf("%s: unquoted row column in statement %s", name, lit)
			}
		}
	}
}
