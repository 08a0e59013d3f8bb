//go:build !excludemain

package main

import (
	"os"
	"os/signal"
	"syscall"
)

func init() {
	daemonWaitForShutdown = waitForShutdownSignal
}

func waitForShutdownSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
}
