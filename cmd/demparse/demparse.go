/*

A simple CLI app to parse and display information about
a CS:GO demo recording passed as a CLI argument.

*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/cskit/demparse/demparser"
)

const (
	appName    = "demparse"
	appVersion = "v1.2.0"
	appHome    = "https://github.com/cskit/demparse"
)

const (
	ExitCodeMissingArguments     = 1
	ExitCodeFailedToParseDemo    = 2
	ExitCodeFailedToCreateOutput = 3
)

// Flag variables
var (
	version = flag.Bool("version", false, "print version info and exit")

	header   = flag.Bool("header", true, "print demo header")
	players  = flag.Bool("players", true, "print the player records")
	convars  = flag.Bool("convars", false, "print the server config")
	computed = flag.Bool("computed", true, "print computed / derived data")
	outFile  = flag.String("outfile", "", "optional output file name")

	ignoreBombsite = flag.Bool("ignorebombsite", false, "carry on when a bomb event references an unknown bombsite")
	bestEffort     = flag.Bool("besteffort", false, "skip malformed sub-messages instead of aborting")

	indent = flag.Bool("indent", true, "use indentation when formatting output")
)

func main() {
	flag.Parse()

	if *version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(ExitCodeMissingArguments)
	}

	cfg := demparser.Config{
		IgnoreBombsiteIndexNotFound: *ignoreBombsite,
		BestEffort:                  *bestEffort,
	}

	d, err := demparser.ParseFileConfig(args[0], cfg)
	if err != nil {
		fmt.Printf("Failed to parse demo: %v\n", err)
		os.Exit(ExitCodeFailedToParseDemo)
	}

	var destination = os.Stdout

	if *outFile != "" {
		foutput, err := os.Create(*outFile)
		if err != nil {
			fmt.Printf("Failed to create output file: %v\n", err)
			os.Exit(ExitCodeFailedToCreateOutput)
		}
		defer func() {
			if err := foutput.Close(); err != nil {
				panic(err)
			}
		}()

		destination = foutput
	}

	// Zero values in the demo the user does not wish to see:
	if !*header {
		d.Header = nil
	}
	if !*players {
		d.Players = nil
	}
	if !*convars {
		d.ConVars = nil
	}
	if !*computed {
		d.Computed = nil
	}

	enc := json.NewEncoder(destination)

	if *indent {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(d); err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
	}
}

func printVersion() {
	fmt.Println(appName, "version:", appVersion)
	fmt.Println("Parser version:", demparser.Version)
	fmt.Println("Platform:", runtime.GOOS, runtime.GOARCH)
	fmt.Println("Built with:", runtime.Version())
	fmt.Println("Home page:", appHome)
}

func printUsage() {
	fmt.Println("Usage:")
	name := os.Args[0]
	fmt.Printf("\t%s [FLAGS] demofile.dem\n", name)
	fmt.Println("\tRun with '-h' to see a list of available flags.")
}
