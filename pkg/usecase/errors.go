package usecase

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/model"
)

var (
	ErrNotDraft      = goerr.New("request is not a draft")
	ErrNotConfirmed  = goerr.New("request is not confirmed")
	errRunCancelled  = goerr.New("removal request cancelled")
	errRunSuperseded = goerr.New("request already orchestrated by this process")
)

// ParseError reports which labeled fields a submitted request text is
// missing. Callers can re-prompt the submitter with Template.
type ParseError struct {
	Missing []string
}

func (e *ParseError) Error() string {
	return "removal request is missing required fields: " + strings.Join(e.Missing, ", ")
}

// Template returns the expected submission format for re-prompting
func (e *ParseError) Template() string {
	return model.RequestTemplate
}
