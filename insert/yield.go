package insert

import "runtime"

// yield hands off the processor cooperatively, per spec.md §5's
// suspension point (c): explicit yields inside the streaming insert
// pipeline every N rows.
func yield() { runtime.Gosched() }
