package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/gridswap/internal/replay"
)

func runReplay(args []string) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/gridswap/config.yaml)")
	format := fs.String("format", "text", "Output format: text or yaml")
	check := fs.Bool("check", false, "Fail when a script's expect block does not match")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridswap replay [--path PATH] [--format text|yaml] [--check] SCRIPT...")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Replay timed pointer scripts against fresh boards on a virtual clock and")
		fmt.Fprintln(os.Stderr, "print the callbacks each board received.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	if *format != "text" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		return 2
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := newLogger(cfg, os.Stderr)

	status := 0
	for _, file := range fs.Args() {
		script, err := replay.LoadFile(file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		if script.Name == "" {
			script.Name = file
		}

		result, err := replay.Run(script, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
			status = 1
			continue
		}

		switch *format {
		case "yaml":
			data, err := yaml.Marshal(result)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Print("---\n" + string(data))
		default:
			if err := result.WriteText(os.Stdout); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		if *check {
			if err := result.Check(script.Expect); err != nil {
				fmt.Fprintf(os.Stderr, "%s: FAIL\n%v\n", file, err)
				status = 1
			}
		}
	}
	return status
}
