package expression

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/c0xc/dupefinder/pkg/config"
)

func CheckFileSingleMatch(r *config.FileRecord, expressions []CompiledExpression) (bool, error) {
	match, _, err := CheckFileSingleMatchWithReason(r, expressions)
	return match, err
}

func CheckFileSingleMatchWithReason(r *config.FileRecord, expressions []CompiledExpression) (bool, string, error) {
	env := &evalContext{FileRecord: r}

	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, env)
		if err != nil {
			return false, "", fmt.Errorf("check expression: %w", err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, "", fmt.Errorf("expression did not evaluate to a boolean: %q", expression.Text)
		}

		if expResult {
			return true, expression.Text, nil
		}
	}

	return false, "", nil
}
