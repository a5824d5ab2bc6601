//go:build stackvec_release && !stackvec_debug

package stackvec

// DebugAssertions reports whether contract checks are compiled in.
const DebugAssertions = false
