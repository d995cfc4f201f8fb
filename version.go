package stencil

// Version is the library version; the cmd/stencil binary reports it.
// Overridable at link time: -ldflags "-X ...stencil.Version=v1.2.3".
var Version = "0.1.0"
