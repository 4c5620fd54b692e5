// Package cputarget declares the signature of the CPU-emulation
// translation entry point this toolkit links against, without
// implementing it (spec §6: "Extern entry point consumed").
package cputarget

// CPUEnv is an opaque handle to the emulated CPU's register/memory state.
// Its contents are owned by the CPU emulator, not this toolkit.
type CPUEnv struct {
	// Handle is the emulator-owned opaque state pointer. This toolkit never
	// dereferences it.
	Handle any
}

// TranslationBlock is an opaque handle to a unit of translated guest code.
type TranslationBlock struct {
	// Handle is the emulator-owned opaque translation unit. This toolkit
	// never dereferences it.
	Handle any
}

// GenIntermediateCode is the external CPU translator's entry point. It is
// declared here only so tooling can link against its signature; the
// variable is nil until the hosting emulator sets it.
var GenIntermediateCode func(env *CPUEnv, tb *TranslationBlock) int32
