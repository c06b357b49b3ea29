package reload

import "strings"

// Type is a bitmask of resource tiers that need rebuilding.
type Type uint32

const (
	// Shader rebuilds shaders, root signatures, descriptor sets and pipelines.
	Shader Type = 1 << iota

	// Resize rebuilds the swapchain and depth buffer at a new size.
	Resize

	// RenderTarget rebuilds the swapchain, depth buffer and pipelines.
	RenderTarget

	// None requests nothing.
	None Type = 0

	// All requests a full rebuild.
	All = Shader | Resize | RenderTarget
)

// Has reports whether any bit of f is set in t.
func (t Type) Has(f Type) bool {
	return t&f != 0
}

// Any reports whether t requests anything.
func (t Type) Any() bool {
	return t&All != 0
}

// String returns the set bits joined by "|".
func (t Type) String() string {
	if t == None {
		return "None"
	}
	var parts []string
	if t.Has(Shader) {
		parts = append(parts, "Shader")
	}
	if t.Has(Resize) {
		parts = append(parts, "Resize")
	}
	if t.Has(RenderTarget) {
		parts = append(parts, "RenderTarget")
	}
	if rest := t &^ All; rest != 0 {
		parts = append(parts, "Unknown")
	}
	return strings.Join(parts, "|")
}
