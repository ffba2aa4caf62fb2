package initpkg

import (
	"errors"
	"fmt"

	"github.com/expectation-labs/gxctl/internal/suite"
)

// Outcome is how a run ended without error.
type Outcome int

const (
	// Success means the run reached the end of its flow.
	Success Outcome = iota + 1
	// Aborted means the user stopped the run: a declined prompt, closed
	// input or an interrupt.
	Aborted
	// AlreadyComplete means the project needed nothing.
	AlreadyComplete
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Aborted:
		return "aborted"
	case AlreadyComplete:
		return "already_complete"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Steps named in StepError.
const (
	StepReadConfig     = "reading the project configuration"
	StepScaffold       = "creating the project scaffold"
	StepDatasource     = "registering the datasource"
	StepListAssets     = "listing data assets"
	StepProfile        = "profiling the data asset"
	StepSaveSuite      = "saving the expectation suite"
	StepSaveValidation = "saving the validation result"
	StepVerifySuite    = "verifying the expectation suite"
	StepBuildDocs      = "building Data Docs"
)

// StepError is a failure of one init step. Err keeps the collaborator's
// typed error for errors.As.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// errAborted ends the flow when the user declines a prompt that has no
// way forward.
var errAborted = errors.New("aborted by user")

// SuiteNotFoundError is returned when a suite that was just written is not
// listed by the expectations store of the re-read project config.
type SuiteNotFoundError struct {
	Key suite.Key
}

func (e *SuiteNotFoundError) Error() string {
	return fmt.Sprintf("expectation suite %s is not listed by the expectations store", e.Key)
}

func (e *SuiteNotFoundError) Unwrap() error {
	return suite.ErrNotFound
}
