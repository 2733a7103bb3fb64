package engine

import _ "embed"

// prelude defines the pdf_ globals over the natives, guarding each one so
// a runtime fault lands in the error slot instead of escaping the call.
//
//go:embed prelude.js
var prelude string
