package main

import (
	"log"
	"os"
	"path/filepath"
)

// Fail logs why path could not be calculated and, when dir is set, writes the
// reason to dir/<name>.err.
func Fail(dir, path string, reason error) {
	log.Printf("fail: %s: %v", path, reason)
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Println("fail: unable to create report directory", err)
		return
	}
	name := filepath.Join(dir, filepath.Base(path)+".err")
	if err := os.WriteFile(name, []byte(reason.Error()+"\n"), 0o644); err != nil {
		log.Println("fail: unable to write report", err)
	}
}
