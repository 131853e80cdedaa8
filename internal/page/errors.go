package page

import "fmt"

// MissingElementError reports that no element matched a required selector.
type MissingElementError struct {
	Selector string
	Edit     string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("malformed artifact: no element matches %q (needed to %s)", e.Selector, e.Edit)
}
