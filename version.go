package newsrag

// Version is overwritten at build time using ldflags.
var Version = "devel"
