package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
)

var (
	mu      sync.Mutex
	scratch = make(map[string]struct{})
)

// SetupHandler configures signal handling for safer interaction with C libraries.
// Registered scratch files are removed before the process exits.
func SetupHandler() {
	// Create a channel to receive OS signals
	sigChan := make(chan os.Signal, 1)

	// Register for specific signals
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Handle signals in a separate goroutine
	go func() {
		sig := <-sigChan
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			// Clean shutdown
			removeScratchFiles()
			os.Exit(1)
		}
	}()
}

// RegisterScratchFile marks a temporary file for removal if the process is interrupted
func RegisterScratchFile(path string) {
	mu.Lock()
	defer mu.Unlock()
	scratch[path] = struct{}{}
}

// UnregisterScratchFile drops a temporary file from the interrupt cleanup list
func UnregisterScratchFile(path string) {
	mu.Lock()
	defer mu.Unlock()
	delete(scratch, path)
}

func removeScratchFiles() {
	mu.Lock()
	defer mu.Unlock()
	for path := range scratch {
		os.Remove(path)
	}
}

// GetOptimalProcs returns the optimal number of worker goroutines for the system
func GetOptimalProcs() int {
	// Get the number of CPUs available
	numCPU := runtime.NumCPU()

	// For image processing with CGo, using too many goroutines can cause issues
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
