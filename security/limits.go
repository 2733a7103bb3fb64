package security

// Limits bounds the resources a single parse may consume.
type Limits struct {
	// Maximum decompressed stream size. Default: 100 MB.
	MaxDecompressedSize int64
	// Maximum xref chain depth (Prev entries). Default: 50.
	MaxXRefDepth int
	// Maximum string length in bytes. Default: 10 MB.
	MaxStringLength int64
	// Maximum raw stream length in bytes. Default: 50 MB.
	MaxStreamLength int64
	// Maximum page count a range or blank document may be built with.
	// Default: 100000.
	MaxPages int
}

// DefaultLimits returns a Limits struct with safe default values.
func DefaultLimits() Limits {
	return Limits{
		MaxDecompressedSize: 100 * 1024 * 1024,
		MaxXRefDepth:        50,
		MaxStringLength:     10 * 1024 * 1024,
		MaxStreamLength:     50 * 1024 * 1024,
		MaxPages:            100000,
	}
}
