package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoRoot             = "E100" // document has no root
	ErrDuplicateLabel     = "E101" // label used by more than one node
	ErrMissingRule        = "E102" // position table lacks a style
	ErrInvalidDivisor     = "E103" // divisor must be positive
	ErrUnknownType        = "E104" // no factory for the element type
	ErrInvalidThreshold   = "E105" // aspect ratio threshold must be positive
	ErrInvalidLandscape   = "E106" // landscape aspect ratio must be positive
	ErrLoadScreenRule     = "E107" // load screen table lacks a style
	ErrUnknownAction      = "E108" // button action is not an actor event
	ErrRootNotRoot        = "E109" // the root node must have type Root
	ErrMissingLoadTexture = "E110" // loading texture name is empty
	ErrRootFlag           = "E111" // root cannot wait for attachment or require loading
)

// ValidationError represents a layout validation error.
type ValidationError struct {
	Field   string       `json:"field"`
	Label   ir.ElementID `json:"label,omitempty"`
	Message string       `json:"message"`
	Code    string       `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("[%s] %s (label=%s): %s", e.Code, e.Field, e.Label, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate lints a compiled layout document.
// Returns all errors found (does not fail-fast).
func Validate(doc *ir.LayoutDocument) []ValidationError {
	var errs []ValidationError
	if doc == nil || doc.Root == nil {
		return []ValidationError{{Field: "root", Message: "document has no root", Code: ErrNoRoot}}
	}

	errs = append(errs, validateCommon(doc.Common)...)

	if doc.Root.Type != ir.TypeRoot {
		errs = append(errs, ValidationError{
			Field:   "root.type",
			Label:   doc.Root.Label,
			Message: fmt.Sprintf("root must have type %s, got %q", ir.TypeRoot, doc.Root.Type),
			Code:    ErrRootNotRoot,
		})
	}

	// The root is never attached to a parent, so it never receives an
	// attachment notification.
	if doc.Root.WaitsForParentDimension {
		errs = append(errs, ValidationError{
			Field:   "root.waits_for_parent_dimension",
			Label:   doc.Root.Label,
			Message: "the root is never attached and would stay hidden",
			Code:    ErrRootFlag,
		})
	}
	if doc.Root.RequiresLoading {
		errs = append(errs, ValidationError{
			Field:   "root.requires_loading",
			Label:   doc.Root.Label,
			Message: "the root has nothing to load and would hold progress below 1",
			Code:    ErrRootFlag,
		})
	}

	seen := make(map[ir.ElementID]string)
	var walk func(n *ir.LayoutNode, path string)
	walk = func(n *ir.LayoutNode, path string) {
		if first, dup := seen[n.Label]; dup {
			errs = append(errs, ValidationError{
				Field:   path + ".label",
				Label:   n.Label,
				Message: fmt.Sprintf("label already used at %s", first),
				Code:    ErrDuplicateLabel,
			})
		} else {
			seen[n.Label] = path
		}
		errs = append(errs, validateNode(n, path)...)
		for i, c := range n.Children {
			walk(c, fmt.Sprintf("%s.children[%d]", path, i))
		}
	}
	walk(doc.Root, "root")

	return errs
}

func validateCommon(c ir.CommonData) []ValidationError {
	var errs []ValidationError

	if c.AspectRatioThreshold <= 0 {
		errs = append(errs, ValidationError{
			Field:   "common.aspect_ratio_threshold",
			Message: fmt.Sprintf("must be positive, got %g", c.AspectRatioThreshold),
			Code:    ErrInvalidThreshold,
		})
	}
	if c.Landscape.Width <= 0 || c.Landscape.Height <= 0 {
		errs = append(errs, ValidationError{
			Field:   "common.landscape",
			Message: fmt.Sprintf("aspect ratio %g:%g must be positive", c.Landscape.Width, c.Landscape.Height),
			Code:    ErrInvalidLandscape,
		})
	}

	if strings.TrimSpace(c.LoadingTexture.Landscape) == "" || strings.TrimSpace(c.LoadingTexture.Portrait) == "" {
		errs = append(errs, ValidationError{
			Field:   "common.loading_texture",
			Message: "both landscape and portrait textures are required",
			Code:    ErrMissingLoadTexture,
		})
	}
	errs = append(errs, validateTable(c.LoadScreen, "common.load_screen", "", ErrLoadScreenRule)...)

	return errs
}

func validateNode(n *ir.LayoutNode, path string) []ValidationError {
	var errs []ValidationError

	if !n.Type.Known() {
		errs = append(errs, ValidationError{
			Field:   path + ".type",
			Label:   n.Label,
			Message: fmt.Sprintf("Unknown element type %q", n.Type),
			Code:    ErrUnknownType,
		})
	}

	// Containers always position themselves; everything else only when it
	// declares a table.
	if n.Type == ir.TypeLayoutContainer || len(n.Position) > 0 {
		errs = append(errs, validateTable(n.Position, path+".position", n.Label, ErrMissingRule)...)
	}

	if n.Action != "" {
		if _, ok := actor.ParseEventType(n.Action); !ok {
			errs = append(errs, ValidationError{
				Field:   path + ".action",
				Label:   n.Label,
				Message: fmt.Sprintf("unknown action %q", n.Action),
				Code:    ErrUnknownAction,
			})
		}
	}

	return errs
}

func validateTable(t ir.PositionTable, path string, label ir.ElementID, missingCode string) []ValidationError {
	var errs []ValidationError
	for _, s := range t.Missing() {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("%s.%s.%s", path, s.Orientation(), s),
			Label:   label,
			Message: fmt.Sprintf("no position rule for style %s", s),
			Code:    missingCode,
		})
	}
	for _, s := range ir.Styles {
		r, ok := t.Lookup(s.Orientation(), s)
		if ok && r.Divisor <= 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.%s.%s.divisor", path, s.Orientation(), s),
				Label:   label,
				Message: fmt.Sprintf("divisor must be positive, got %g", r.Divisor),
				Code:    ErrInvalidDivisor,
			})
		}
	}
	return errs
}
