package backup

import (
	"fmt"

	"github.com/dmitrijs2005/medbook/internal/common"
)

// MalformedDocumentError is returned by ImportSnapshot when the uploaded
// document is not a JSON object.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed backup document: %v", e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

func (e *MalformedDocumentError) Is(target error) bool {
	return target == common.ErrMalformedDocument
}
