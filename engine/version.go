package engine

// Version identifies the simulation rules. It is recorded with every stored
// run and can be overridden at link time.
var Version = "0.3.0"
