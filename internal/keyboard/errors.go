package keyboard

import "errors"

var (
	ErrActionExists      = errors.New("keyboard: action already registered")
	ErrActionNotFound    = errors.New("keyboard: action not found")
	ErrBindingNotFound   = errors.New("keyboard: binding not found")
	ErrBindingConflict   = errors.New("keyboard: binding conflict")
	ErrPromptDeferred    = errors.New("keyboard: conflict deferred to UI layer")
	ErrInvalidKeyCombo   = errors.New("keyboard: invalid key combo")
	ErrImportInvalid     = errors.New("keyboard: import document failed validation")
	ErrDuplicateActionID = errors.New("keyboard: duplicate action id in import")
)
