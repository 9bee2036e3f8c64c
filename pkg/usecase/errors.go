package usecase

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ErrNameNotFound means a name matched nothing, locally or remotely
var ErrNameNotFound = goerr.New("name not found")

// NameCandidate is one possible resolution of an ambiguous name
type NameCandidate struct {
	ID    string
	Label string
}

// AmbiguousNameError reports that a name matched more than one object.
// It carries the full candidate set so the caller can present them for
// disambiguation; resolution never picks one arbitrarily.
type AmbiguousNameError struct {
	Name       string
	Candidates []NameCandidate
}

// Error implements the error interface
func (e *AmbiguousNameError) Error() string {
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = c.ID
	}
	return fmt.Sprintf("name %q is ambiguous: matches %s", e.Name, strings.Join(ids, ", "))
}
