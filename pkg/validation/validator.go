package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxCoordinate bounds node positions handed in by display clients.
	MaxCoordinate = 1e6
	// MaxNodeID bounds node ids in requests; larger ids can never exist in
	// an interactive session and usually signal a client bug.
	MaxNodeID = 1 << 30
	// MaxScriptBytes bounds command scripts submitted in one request.
	MaxScriptBytes = 1 << 16
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 {
			return false
		}
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
}

// NodeRequest adds a node, optionally at a display position.
type NodeRequest struct {
	X *float64 `json:"x" validate:"omitempty,finite,min=-1000000,max=1000000"`
	Y *float64 `json:"y" validate:"omitempty,finite,min=-1000000,max=1000000"`
}

// LinkRequest names a link by its endpoints.
type LinkRequest struct {
	Source *int `json:"source" validate:"required,min=0,max=1073741824"`
	Target *int `json:"target" validate:"required,min=0,max=1073741824"`
}

// MergeRequest reclassifies Input in Target's logic next to Representative.
type MergeRequest struct {
	Input          *int `json:"input" validate:"required,min=0,max=1073741824"`
	Representative *int `json:"representative" validate:"required,min=0,max=1073741824"`
	Target         *int `json:"target" validate:"required,min=0,max=1073741824"`
}

// DetachRequest moves Input of Target's logic into its own group.
type DetachRequest struct {
	Input  *int `json:"input" validate:"required,min=0,max=1073741824"`
	Target *int `json:"target" validate:"required,min=0,max=1073741824"`
}

// CommandRequest carries a single script line.
type CommandRequest struct {
	Command string `json:"command" validate:"required,max=256"`
}

// ScriptRequest carries a command script.
type ScriptRequest struct {
	Script string `json:"script" validate:"required,max=65536"`
}

// ValidateNodeRequest validates a node creation request
func ValidateNodeRequest(req *NodeRequest) error {
	if req == nil {
		return errors.New("node request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if (req.X == nil) != (req.Y == nil) {
		return errors.New("Position: x and y must be given together")
	}
	return nil
}

// ValidateLinkRequest validates a link request
func ValidateLinkRequest(req *LinkRequest) error {
	if req == nil {
		return errors.New("link request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateMergeRequest validates a logic merge request
func ValidateMergeRequest(req *MergeRequest) error {
	if req == nil {
		return errors.New("merge request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateDetachRequest validates a logic detach request
func ValidateDetachRequest(req *DetachRequest) error {
	if req == nil {
		return errors.New("detach request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateCommandRequest validates a single command line
func ValidateCommandRequest(req *CommandRequest) error {
	if req == nil {
		return errors.New("command request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateScriptRequest validates a script submission
func ValidateScriptRequest(req *ScriptRequest) error {
	if req == nil {
		return errors.New("script request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateNodeID validates a node id taken from a path or a script.
func ValidateNodeID(id int) error {
	if err := validate.Var(id, "min=0,max=1073741824"); err != nil {
		return fmt.Errorf("node id %d is out of range [0, %d]", id, MaxNodeID)
	}
	return nil
}

// ValidateSessionID validates an editing session identifier.
func ValidateSessionID(id string) error {
	if err := validate.Var(id, "required,uuid4"); err != nil {
		return fmt.Errorf("session id %q is not a valid UUID", id)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "finite":
			return fmt.Errorf("%s: must be a finite number", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
