// Package arena implements a string interner, grounded on the reference
// implementation's common/arena.c chained-chunk design (spec §3, §9).
//
// Go's garbage collector makes manual chunk freeing unnecessary, so this
// arena keeps the reference's "reset rewinds, free releases everything"
// shape but drops the reference's raw byte-pointer bump math: an Arena
// holds only interned strings. It does not allocate AST nodes or
// datatypes, and no other package in this module uses it; the compiler
// stages allocate their nodes, datatypes and identifier strings as
// ordinary Go values.
package arena

// Arena owns interned text. Reset clears it for reuse; Free drops the
// table entirely, after which the arena is unusable until Reset.
type Arena struct {
	interned map[string]string
}

// New returns a ready-to-use Arena.
func New() *Arena {
	return &Arena{interned: make(map[string]string)}
}

// Intern returns the arena's single owned copy of s, cloning it into the
// arena the first time it is seen. Equal text interned through the same
// Arena shares one backing string.
func (a *Arena) Intern(s string) string {
	if existing, ok := a.interned[s]; ok {
		return existing
	}
	clone := string([]byte(s))
	a.interned[s] = clone
	return clone
}

// Reset rewinds the arena, discarding all interned text. The arena is
// usable again immediately after.
func (a *Arena) Reset() {
	a.interned = make(map[string]string)
}

// Free releases the arena. After Free the arena must not be used again
// without a call to Reset.
func (a *Arena) Free() {
	a.interned = nil
}
