package main

// RootFlags Flag structs to decouple cobra from logic for testing.
type RootFlags struct {
	ConfigPath    string
	BrowserPath   string
	Runtime       string
	Port          int
	URL           string
	Dir           string
	SkipIfRunning bool
	NoPause       bool
	LogLevel      string
	LogFile       string
	MetricsListen string
}

type RunningFlags struct {
	Name string
}
