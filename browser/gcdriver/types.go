package gcdriver

import (
	"strings"

	"github.com/pkg/errors"
)

// revive:exported
var (
	ErrNavigationTimedOut = errors.New("navigation timed out")
	ErrTabCrashed         = errors.New("tab crashed")
	ErrTabClosing         = errors.New("closing")
	ErrNavigating         = errors.New("error in navigation")
	ErrNoBoxModel         = errors.New("element has no box model")
)

// ScriptEvaluationErr returned when a script run against a node threw
type ScriptEvaluationErr struct {
	Message       string
	ExceptionText string
}

func (e *ScriptEvaluationErr) Error() string {
	return e.Message + " " + e.ExceptionText
}

// attributeValue of attr in the flattened name, value list the DOM domain returns
func attributeValue(attributes []string, attr string) string {
	attr = strings.ToLower(attr)
	for i := 0; i+1 < len(attributes); i += 2 {
		if strings.ToLower(attributes[i]) == attr {
			return attributes[i+1]
		}
	}
	return ""
}
