package rustc

// CompilationMode distinguishes builds for the host triple from cross builds.
//
// Native compilation uses a separate cache subtree: cross compilation needs
// lib/rustlib/<host> to mirror rustc's own sysroot, whereas native compilation
// wants a custom lib/rustlib/<host>. Giving each mode its own subtree means
// they never share a directory, and so never share a file lock.
type CompilationMode struct {
	// Target is nil in native mode.
	Target *Target

	host string
}

// Native returns the mode that serves the host triple itself.
func Native(host string) CompilationMode {
	return CompilationMode{host: host}
}

// Cross returns the mode for a non-host target.
func Cross(target *Target) CompilationMode {
	return CompilationMode{Target: target}
}

// IsNative reports whether the sysroot serves the host triple.
func (m CompilationMode) IsNative() bool {
	return m.Target == nil
}

// Triple returns the triple the sysroot is built for.
func (m CompilationMode) Triple() string {
	if m.Target != nil {
		return m.Target.Triple
	}
	return m.host
}
