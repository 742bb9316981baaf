package main

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bgrewell/sdt-kit"
	"github.com/bgrewell/sdt-kit/internal/groundtruth"
	"github.com/bgrewell/sdt-kit/pkg/logging"
	"github.com/bgrewell/sdt-kit/pkg/option"
	"github.com/bgrewell/usage"
)

func generateFileMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	hashBytes := hash.Sum(nil)
	return fmt.Sprintf("%x", hashBytes), nil
}

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("round_trip"),
		usage.WithApplicationDescription("round_trip is a functional testing application that is part of sdt-kit and is designed to verify that extracting a container to CSV and importing the unedited CSV reproduces the container byte for byte."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	rm := u.AddBooleanOption("rm", "remove-test-files", true, "Remove the test files after running the tests", "", nil)
	gt := u.AddStringOption("gt", "ground-truth", "", "JSON listing of the expected entries", "", nil)
	input := u.AddArgument(1, "input", "The input SDT file to run the tests against", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if input == nil || *input == "" {
		u.PrintError(fmt.Errorf("location of the input sdt file <input> must be provided"))
		os.Exit(1)
	}

	groundTruth := ""
	if gt != nil {
		groundTruth = *gt
	}
	os.Exit(run(os.Stdout, *input, groundTruth, "", *rm))
}

// run performs the round trip in a temporary directory under tempRoot and returns the process exit code. The
// directory is removed before returning when remove is set, whatever the outcome.
func run(out io.Writer, input string, groundTruth string, tempRoot string, remove bool) int {
	logger := logging.NewSimpleLogger(os.Stderr, logging.LEVEL_TRACE, true)

	dir, err := os.MkdirTemp(tempRoot, "round_trip_test_*")
	if err != nil {
		fmt.Fprintf(out, "Failed to create temporary directory: %s\n", err)
		return 1
	}
	if remove {
		defer os.RemoveAll(dir)
	} else {
		fmt.Fprintf(out, "Temporary directory: %s\n", dir)
	}

	csvPath := filepath.Join(dir, "entries.csv")
	c, err := sdt.Extract(input, csvPath, option.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(out, "Failed to extract SDT file: %s\n", err)
		return 1
	}
	if c.Stop != nil {
		fmt.Fprintf(out, "Entry run ended early: %s\n", c.Stop)
	}

	if groundTruth != "" {
		if err := groundtruth.Validate(out, c.Entries, groundTruth); err != nil {
			fmt.Fprintf(out, "Ground truth validation failed: %s\n", err)
			return 1
		}
	}

	outPath := filepath.Join(dir, "rebuilt.sdt")
	if _, err := sdt.Import(csvPath, input, outPath, option.WithLogger(logger)); err != nil {
		fmt.Fprintf(out, "Failed to import CSV file: %s\n", err)
		return 1
	}

	// Verify that the rebuilt SDT file is the same as the input SDT file
	inputHash, err := generateFileMD5(input)
	if err != nil {
		fmt.Fprintf(out, "Failed to generate MD5 hash for input file: %s\n", err)
		return 1
	}

	outputHash, err := generateFileMD5(outPath)
	if err != nil {
		fmt.Fprintf(out, "Failed to generate MD5 hash for output file: %s\n", err)
		return 1
	}

	if inputHash != outputHash {
		fmt.Fprintf(out, "MD5 hash of input file does not match MD5 hash of output file:\n  Input:  %s\n  Output: %s\n", inputHash, outputHash)
		return 1
	}

	fmt.Fprintf(out, "Round trip of %d entries reproduced %s exactly.\n", len(c.Entries), input)
	return 0
}
