package llm

var WaitReadyEvery = waitReady
