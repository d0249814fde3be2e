package regex

import (
	"time"

	"github.com/dlclark/regexp2"
)

type Pattern struct {
	Expression *regexp2.Regexp
}

func Compile(pattern string) (*Pattern, error) {
	exp, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	exp.MatchTimeout = 5 * time.Second

	return &Pattern{Expression: exp}, nil
}

func Check(text string, pattern *Pattern) (bool, error) {
	return pattern.Expression.MatchString(text)
}

func CheckAny(text string, patterns []*Pattern) (bool, error) {
	for _, pattern := range patterns {
		match, err := pattern.Expression.MatchString(text)
		if err != nil {
			return false, err
		}

		if match {
			return true, nil
		}
	}

	return false, nil
}

func CheckAll(text string, patterns []*Pattern) (bool, error) {
	for _, pattern := range patterns {
		match, err := pattern.Expression.MatchString(text)
		if err != nil {
			return false, err
		}

		if !match {
			return false, nil
		}
	}

	return len(patterns) > 0, nil
}
