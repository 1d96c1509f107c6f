package classifier

import "errors"

// ErrClassificationFailed indicates the model returned output violating
// the response contract. Partial results are never propagated.
var ErrClassificationFailed = errors.New("classification failed")
