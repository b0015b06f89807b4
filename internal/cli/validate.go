package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tetra/internal/compiler"
	"github.com/roach88/tetra/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Nodes  int                        `json:"nodes"`
	Hash   string                     `json:"document_hash,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <layout>",
		Short: "Compile and lint a layout",
		Long: `Compile a CUE or JSON layout and lint it.

Reports every problem at once: duplicate labels, position tables missing a
style, non-positive divisors, unknown element types or actions, root flags
the root can never satisfy, and an unusable common section.

Exit codes:
  0 - Layout is valid
  1 - Layout compiled but failed lint
  2 - Layout could not be read or compiled`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	doc, err := LoadLayout(path)
	if err != nil {
		code, msg := loadErrorParts(err)
		_ = formatter.Error(code, msg, nil)
		return WrapExitError(ExitCommandError, "failed to load layout", err)
	}
	formatter.VerboseLog("Compiled %d node(s) from %s", doc.Count(), path)

	errs := compiler.Validate(doc)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, doc, errs)
	}

	hash, err := ir.DocumentHash(doc)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to hash layout", err)
	}

	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Nodes: doc.Count(), Hash: hash})
	}
	fmt.Fprintf(formatter.Writer, "✓ Layout valid (%d nodes)\n", doc.Count())
	formatter.VerboseLog("Document hash: %s", hash)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, doc *ir.LayoutDocument, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Nodes: doc.Count(), Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
	}
	return exitErr
}
