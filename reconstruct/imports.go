package reconstruct

import (
	"regexp"
	"strings"

	"github.com/arjunmahishi/reconstruct/ast"
	"github.com/arjunmahishi/reconstruct/naming"
	"github.com/arjunmahishi/reconstruct/types"
)

// unimportedTypes returns the injected type names that prog neither imports nor declares as a
// top-level class, in migration order.
func unimportedTypes(prog *ast.Program, migrations []types.Migration) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, m := range migrations {
		short := naming.ShortName(m.Type)
		if short == "" || seen[short] {
			continue
		}
		seen[short] = true
		if !inScope(prog, short) {
			missing = append(missing, short)
		}
	}
	return missing
}

func inScope(prog *ast.Program, name string) bool {
	word := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	for _, stmt := range prog.Stmts {
		switch s := stmt.(type) {
		case *ast.Class:
			if s.Name == name {
				return true
			}
		case *ast.RawStmt:
			if strings.HasPrefix(s.Text, "import") && word.MatchString(s.Text) {
				return true
			}
		}
	}
	return false
}
