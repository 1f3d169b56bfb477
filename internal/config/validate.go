package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError names one configuration field that violates the
// schema.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate unifies the configuration with the embedded CUE schema and
// returns every violation found, one per field. A nil result means
// the configuration is valid.
func (c Config) Validate() []ValidationError {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return []ValidationError{{Field: "schema", Message: err.Error()}}
	}

	merged := schema.Unify(ctx.Encode(c))
	err := merged.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var violations []ValidationError
	for _, e := range errors.Errors(err) {
		violations = append(violations, ValidationError{
			Field:   fieldPath(e),
			Message: errMessage(e),
		})
	}
	return violations
}

func fieldPath(e errors.Error) string {
	if p := e.Path(); len(p) > 0 {
		return strings.Join(p, ".")
	}
	return "config"
}

func errMessage(e errors.Error) string {
	format, args := e.Msg()
	return fmt.Sprintf(format, args...)
}
