package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
)

// Run calls f on a new goroutine. A panic in f is logged with its stack and
// ends the process.
func Run(name string, f func()) {
	go func() {
		defer Recover(name)
		f()
	}()
}

func Recover(name string) {
	if r := recover(); r != nil {
		HandlePanic(name, r)
	}
}

func HandlePanic(name string, p any) {
	defer os.Exit(1)
	log.Printf("%s: panic: %v\n\n%s", name, p, debug.Stack())
}

// Catch stores a recovered panic in *err. It must be deferred directly.
func Catch(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}
