// Package reload decides which GPU resource tiers are rebuilt when the
// window is resized, the render target is invalidated or shader sources
// change.
//
// A reload is described by a [Type] bitmask. [LoadSteps] and
// [UnloadSteps] turn that mask into an ordered list of [Step] values, and
// a [Coordinator] walks that list across every registered [System]. The
// coordinator always drains the GPU before the first destructive call.
package reload
