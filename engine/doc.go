// Package engine hosts the PDF engine inside an embedded goja runtime.
//
// Every operation is installed as a global function named pdf_<op>. The
// functions never throw: a failure is recorded in the runtime's error slot,
// read through __errorState as [code, message, serial] and reset by
// __clearError. Documents and page ranges live in generation-counted
// arenas and are named by integer handles.
package engine
