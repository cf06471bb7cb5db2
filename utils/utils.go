package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	args := make(map[string]string)

	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				// The next argument is the value
				args[flagName] = os.Args[i+1]
				i++ // Skip the value in the next iteration
			}
		}
	}

	return args
}

// GetDefaultDatabasePath returns the default path for the history database file
func GetDefaultDatabasePath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "comparisons.db"
	}

	// Get the directory containing the executable
	exeDir := filepath.Dir(exePath)

	// Return the default database path in the same directory
	return filepath.Join(exeDir, "comparisons.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s --first=PATH --second=PATH [--threshold=VALUE] [--output=PATH] [--no-output] [--database=PATH] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s --show-history --database=PATH\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --first        : Path to the first input image\n")
	fmt.Printf("  --second       : Path to the second input image\n")
	fmt.Printf("  --threshold    : SSIM threshold below which a diff image is written (0.0-1.0, default: 1.0)\n")
	fmt.Printf("  --output       : Path for the side-by-side diff image (default: my-diff.png)\n")
	fmt.Printf("  --no-output    : Never write a diff image, only report the score\n")
	fmt.Printf("  --database     : Record the comparison in a history database at PATH\n")
	fmt.Printf("  --show-history : Print recent comparisons from the history database\n")
	fmt.Printf("  --debug        : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile      : Specify custom log file path (default: image-compare.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s --first=expected.png --second=actual.png\n", os.Args[0])
	fmt.Printf("  %s --first=a.png --second=b.png --threshold=0.95 --output=diff.png --debug\n", os.Args[0])
}

// ParseThreshold parses and validates the threshold value from string
func ParseThreshold(thresholdStr string) (float64, error) {
	parsedThreshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil || parsedThreshold < 0 || parsedThreshold > 1 {
		return 1.0, fmt.Errorf("Invalid threshold value '%s', using default (1.0)", thresholdStr)
	}
	return parsedThreshold, nil
}
