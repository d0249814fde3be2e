package expression

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"github.com/c0xc/dupefinder/pkg/config"
)

type CompiledExpression struct {
	Text    string
	Program *vm.Program
}

// evalContext is the environment filter expressions run against. Embedding
// the record promotes its fields and helper methods (Size, Name, Ext(),
// RegexMatch(), ...) into the expression scope.
type evalContext struct {
	*config.FileRecord
}

// Compile compiles filter expressions against the file record environment.
// Every expression must evaluate to a boolean; failures are configuration
// errors and surface before any file is touched.
func Compile(defs []string) ([]CompiledExpression, error) {
	env := &evalContext{}

	var compiled []CompiledExpression
	for _, def := range defs {
		program, err := expr.Compile(def, expr.Env(env), expr.AsBool())
		if err != nil {
			return nil, errors.Wrapf(err, "compile expression %q", def)
		}

		compiled = append(compiled, CompiledExpression{Text: def, Program: program})
	}

	return compiled, nil
}
