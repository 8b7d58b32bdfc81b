package main

// BuildNumber is set at link time: -ldflags "-X main.BuildNumber=...".
var BuildNumber = "dev"
