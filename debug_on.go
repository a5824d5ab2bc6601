//go:build !stackvec_release || stackvec_debug

package stackvec

// DebugAssertions reports whether contract checks are compiled in.
// Build with -tags stackvec_release to drop them; -tags stackvec_debug
// keeps them even in a release build.
const DebugAssertions = true
