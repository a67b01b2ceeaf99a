package project

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// CompileError is a compilation failure with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile parses one project struct into a Definition.
//
// The value should be the project struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`project: intro: { ... }`)
//	def, err := Compile(v.LookupPath(cue.ParsePath("project.intro")))
func Compile(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkSchema(v); err != nil {
		return nil, err
	}

	def := &Definition{Pos: v.Pos()}
	if labels := v.Path().Selectors(); len(labels) > 0 {
		def.Label = labels[len(labels)-1].String()
	}

	var err error
	if def.Name, err = v.LookupPath(cue.ParsePath("name")).String(); err != nil {
		return nil, formatCUEError(err)
	}
	if def.Duration, err = v.LookupPath(cue.ParsePath("duration")).Float64(); err != nil {
		return nil, formatCUEError(err)
	}

	if segsVal := v.LookupPath(cue.ParsePath("segments")); segsVal.Exists() {
		if def.Segments, err = parseSegments(segsVal); err != nil {
			return nil, err
		}
	}

	if gesturesVal := v.LookupPath(cue.ParsePath("gestures")); gesturesVal.Exists() {
		iter, err := gesturesVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			cmd, err := parseGesture(iter.Value(), def.Duration)
			if err != nil {
				return nil, err
			}
			def.Gestures = append(def.Gestures, cmd)
		}
	}

	return def, nil
}

// checkSchema unifies v with the embedded #Project definition and requires
// the result to be concrete.
func checkSchema(v cue.Value) error {
	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("embedded schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Project")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

func parseSegments(v cue.Value) ([]ir.Segment, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	segs := []ir.Segment{}
	for iter.Next() {
		item := iter.Value()

		var seg ir.Segment
		if idVal := item.LookupPath(cue.ParsePath("id")); idVal.Exists() {
			if seg.ID, err = idVal.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		if seg.Start, err = item.LookupPath(cue.ParsePath("start")).Float64(); err != nil {
			return nil, formatCUEError(err)
		}
		if seg.End, err = item.LookupPath(cue.ParsePath("end")).Float64(); err != nil {
			return nil, formatCUEError(err)
		}
		if seg.Included, err = item.LookupPath(cue.ParsePath("included")).Bool(); err != nil {
			return nil, formatCUEError(err)
		}

		if seg.End <= seg.Start {
			return nil, &CompileError{
				Field:   "segments.end",
				Message: fmt.Sprintf("end %g must be after start %g", seg.End, seg.Start),
				Pos:     item.Pos(),
			}
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// parseGesture converts one gesture struct to an engine command. A begin
// without a duration inherits projectDuration.
func parseGesture(v cue.Value, projectDuration float64) (engine.Command, error) {
	op, err := v.LookupPath(cue.ParsePath("op")).String()
	if err != nil {
		return engine.Command{}, formatCUEError(err)
	}
	cmd := engine.Command{Op: engine.Op(op)}

	atVal := v.LookupPath(cue.ParsePath("at"))
	if atVal.Exists() {
		if cmd.At, err = atVal.Float64(); err != nil {
			return engine.Command{}, formatCUEError(err)
		}
	}
	durVal := v.LookupPath(cue.ParsePath("duration"))
	if durVal.Exists() {
		if cmd.Duration, err = durVal.Float64(); err != nil {
			return engine.Command{}, formatCUEError(err)
		}
	}
	idVal := v.LookupPath(cue.ParsePath("id"))
	if idVal.Exists() {
		if cmd.ID, err = idVal.String(); err != nil {
			return engine.Command{}, formatCUEError(err)
		}
	}
	if segsVal := v.LookupPath(cue.ParsePath("segments")); segsVal.Exists() {
		segs, err := parseSegments(segsVal)
		if err != nil {
			return engine.Command{}, err
		}
		cmd.Segments = ir.Records(segs)
	}

	missing := func(arg string) error {
		return &CompileError{
			Field:   "gestures." + op,
			Message: fmt.Sprintf("%s requires %q", op, arg),
			Pos:     v.Pos(),
		}
	}

	switch cmd.Op {
	case engine.OpBegin:
		if !atVal.Exists() {
			return engine.Command{}, missing("at")
		}
		if !durVal.Exists() {
			cmd.Duration = projectDuration
		}
	case engine.OpStop, engine.OpSplit:
		if !atVal.Exists() {
			return engine.Command{}, missing("at")
		}
	case engine.OpToggle:
		if !idVal.Exists() && !atVal.Exists() {
			return engine.Command{}, missing("id")
		}
	case engine.OpFinalize:
		if !durVal.Exists() {
			cmd.Duration = projectDuration
		}
	}

	if err := cmd.Validate(); err != nil {
		return engine.Command{}, &CompileError{Field: "gestures.op", Message: err.Error(), Pos: v.Pos()}
	}
	return cmd, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return &CompileError{Field: "cue", Message: first.Error()}
}
