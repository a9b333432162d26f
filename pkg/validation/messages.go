package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// MessagesFor turns a binding error into user-facing field messages.
// Non-validator errors (malformed JSON and the like) collapse to a
// single generic message so internals never leak.
func MessagesFor(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request body"}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if custom, ok := CustomMessage(fe.Field())[fe.Tag()]; ok {
			out = append(out, custom)
			continue
		}
		out = append(out, DefaultMessage(fe.Field(), fe.Tag()))
	}
	return out
}
