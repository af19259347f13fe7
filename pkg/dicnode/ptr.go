package dicnode

import "unsafe"

// ptrOf gives a stable identity for a DicNode slot, used only as the final
// tie-breaker in Compare so that ordering is a deterministic total order
// even between two otherwise-equal nodes.
func ptrOf(n *DicNode) unsafe.Pointer { return unsafe.Pointer(n) }
