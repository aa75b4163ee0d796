package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"cad-editor/internal/cad/service"
	"cad-editor/internal/cad/store"
	"cad-editor/internal/common/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	var (
		paperspace bool
		brief      bool
		maxText    int
		maxBounds  int
		out        string
	)

	flagSet := pflag.NewFlagSet("cadinspect", pflag.ContinueOnError)
	flagSet.BoolVar(&paperspace, "paperspace", false, "include paper space layouts in the summary")
	flagSet.BoolVar(&brief, "brief", false, "print the plain-text overview instead of JSON")
	flagSet.IntVar(&maxText, "max-text", 5000, "maximum number of text index items")
	flagSet.IntVar(&maxBounds, "max-boundaries", 5000, "maximum number of boundary candidates")
	flagSet.StringVarP(&out, "out", "o", "", "write the summary to this file instead of stdout")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(argv); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) != 1 {
		printHelp(flagSet)
		return fmt.Errorf("expected exactly one document location, got %d", len(args))
	}

	logger.SetupWriter(os.Stderr, "warn", "text")

	svc := service.New(&store.Router{Files: store.NewFileStore("")}, service.Options{
		MaxTextItems:          maxText,
		MaxBoundaryCandidates: maxBounds,
	})
	ctx := context.Background()
	src := service.Source{Location: args[0]}

	var data []byte
	if brief {
		text, err := svc.Brief(ctx, src)
		if err != nil {
			return err
		}
		data = []byte(text)
	} else {
		sum, err := svc.Summarize(ctx, src, paperspace)
		if err != nil {
			return err
		}
		data, err = json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		data = append(data, '\n')
	}

	if out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `cadinspect prints a summary of a CAD document.

Usage:
  cadinspect [flags] <location>

Flags:
`)
	flagSet.PrintDefaults()
}
