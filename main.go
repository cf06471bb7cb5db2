package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/pocockn/image-compare/database"
	"github.com/pocockn/image-compare/imageprocessor"
	"github.com/pocockn/image-compare/logging"
	"github.com/pocockn/image-compare/signalhandler"
	"github.com/pocockn/image-compare/utils"
)

func main() {
	// Set up proper signal handling so scratch files never outlive an interrupt
	signalhandler.SetupHandler()

	// Cap the number of CPUs used by the OpenCV bindings
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	if _, ok := args["help"]; ok {
		utils.PrintUsage()
		os.Exit(0)
	}

	// Setup debug logging if enabled
	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		logPath := "image-compare.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	// History listing does not need the two input images
	if _, ok := args["show-history"]; ok {
		handleHistoryCommand(args)
		return
	}

	handleCompareCommand(args, debugMode)
}

func handleCompareCommand(args map[string]string, debugMode bool) {
	firstPath, hasFirst := args["first"]
	secondPath, hasSecond := args["second"]
	if !hasFirst || firstPath == "" || !hasSecond || secondPath == "" {
		fmt.Println("Error: Missing input image (use --first=PATH and --second=PATH)")
		utils.PrintUsage()
		os.Exit(1)
	}

	// Any imperfect match renders a diff unless the caller loosens this
	threshold := 1.0
	if thresholdStr, ok := args["threshold"]; ok {
		parsedThreshold, err := utils.ParseThreshold(thresholdStr)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		} else {
			threshold = parsedThreshold
		}
	}

	output := imageprocessor.DefaultDiffPath
	if customOutput, ok := args["output"]; ok && customOutput != "" {
		output = customOutput
	}
	if _, ok := args["no-output"]; ok {
		output = ""
	}

	db := openHistoryDatabase(args)
	if db != nil {
		defer db.Close()
	}

	startTime := time.Now()

	result, err := imageprocessor.Compare(imageprocessor.CompareOptions{
		FirstPath:     firstPath,
		SecondPath:    secondPath,
		SSIMThreshold: threshold,
		SaveDiffTo:    output,
		DB:            db,
		DebugMode:     debugMode,
	})
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	if result.ArtifactPath != "" {
		fmt.Printf("Diff image saved to: %s\n", result.ArtifactPath)
	}

	if debugMode {
		duration := time.Since(startTime)
		logging.DebugLog("Comparison finished in %v (score %.6f, %d regions)",
			duration, result.Score, len(result.Regions))
	}
}

func handleHistoryCommand(args map[string]string) {
	dbPath := historyDatabasePath(args)
	if dbPath == "" {
		fmt.Println("Error: --show-history requires --database=PATH")
		os.Exit(1)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Database does not exist: %s. Run a comparison with --database first.", dbPath)
	}

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	records, err := database.GetRecentComparisons(db, 10)
	if err != nil {
		log.Fatalf("Error reading comparison history: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("No comparisons recorded.")
		return
	}

	fmt.Println("Recent comparisons:")
	for i, rec := range records {
		fmt.Printf("%d. %s vs %s\n", i+1, rec.FirstPath, rec.SecondPath)
		fmt.Printf("   SSIM Score: %.4f (threshold %.4f, %d regions)\n",
			rec.Score, rec.Threshold, rec.RegionCount)
		if rec.ArtifactPath != "" {
			fmt.Printf("   Diff: %s\n", rec.ArtifactPath)
		}
		fmt.Printf("   Compared at: %s\n", rec.ComparedAt)
	}

	stats, err := database.GetComparisonStats(db)
	if err == nil && stats != nil {
		fmt.Printf("\nSummary:\n")
		fmt.Printf("- Total comparisons: %d\n", stats.TotalComparisons)
		fmt.Printf("- Mean score: %.4f\n", stats.MeanScore)
		fmt.Printf("- Below threshold: %d\n", stats.BelowThreshold)
	}
}

// openHistoryDatabase initializes the optional comparison history store.
// A bare --database flag uses the default path next to the executable.
func openHistoryDatabase(args map[string]string) *sql.DB {
	dbPath := historyDatabasePath(args)
	if dbPath == "" {
		return nil
	}

	db, err := database.InitDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	return db
}

func historyDatabasePath(args map[string]string) string {
	dbArg, ok := args["database"]
	if !ok {
		if dbArg, ok = args["db"]; !ok {
			// Allow --db as an alias for --database
			return ""
		}
	}
	if dbArg == "" || dbArg == "true" {
		return utils.GetDefaultDatabasePath()
	}
	return dbArg
}
