package main

// Version is the smartversion CLI version.
var Version = "1.0.0"
