package wavelet

import "github.com/AlexWan0/go-wavelet/errs"

// Error kinds returned by this package. Match them with errors.Is.
var (
	ErrIndexOutOfRange = errs.ErrIndexOutOfRange
	ErrInvalidQuery    = errs.ErrInvalidQuery
	ErrNotFound        = errs.ErrNotFound
	ErrInvalidState    = errs.ErrInvalidState
	ErrConstruction    = errs.ErrConstruction
	ErrUnsupported     = errs.ErrUnsupported
	ErrCorrupt         = errs.ErrCorrupt
)
