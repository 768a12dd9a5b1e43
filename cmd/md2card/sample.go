package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/fileutil"
)

// runSample prints the built-in example deck, or writes it to --output.
func runSample(args []string, env *Environment) error {
	flags, positional, err := parseSampleFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: sample takes no arguments", ErrUsage)
	}

	content := md2card.SampleMarkdown()
	if flags.output == "" || flags.output == "-" {
		_, err := io.WriteString(env.Stdout, content)
		return err
	}

	if !flags.force {
		_, err := os.Stat(flags.output)
		if err == nil {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", ErrUsage, flags.output)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	if err := fileutil.WriteFileAtomic(flags.output, []byte(content), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !flags.quiet {
		fmt.Fprintf(env.Stdout, "Wrote %s\n", flags.output)
	}
	return nil
}
