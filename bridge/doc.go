// Package bridge is the caller side of the PDF engine boundary.
//
// A Client owns one engine runtime. Documents and page ranges are named by
// Doc and Range handles. Every method returns an error when that call
// failed; the last engine error is also kept in a sticky channel, read with
// LastError and LastErrorString and reset with ClearError.
//
// A Client is not safe for concurrent use.
package bridge
