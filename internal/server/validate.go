package server

import (
	"errors"
	"fmt"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the "residues" tag to gin's validator.
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("failed to register validators: gin's validator is not validator/v10")
			return
		}
		if err := v.RegisterValidation("residues", validateResidues); err != nil {
			registerErr = fmt.Errorf("failed to register residues validator: %w", err)
		}
	})
	return registerErr
}

func validateResidues(fl validator.FieldLevel) bool {
	return isResidues(fl.Field().String())
}

// isResidues is true for a sequence of one-letter residue codes and stop
// codons ('*'), ignoring whitespace. Gaps are not residues.
func isResidues(s string) bool {
	n := 0
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '*':
			n++
		default:
			return false
		}
	}
	return n > 0
}
