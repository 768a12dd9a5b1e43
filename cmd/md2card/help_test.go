package main

// Notes:
// - runHelp: we test per-command help, the default usage, and unknown names.
// - Every flag registered on a FlagSet must appear in the matching help text.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"io"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestRunHelp - Help routing
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{nil, "Usage: md2card <command>"},
		{[]string{"convert"}, "Usage: md2card convert"},
		{[]string{"watch"}, "Usage: md2card watch"},
		{[]string{"serve"}, "Usage: md2card serve"},
		{[]string{"images"}, "Usage: md2card images"},
		{[]string{"search"}, "Usage: md2card search"},
		{[]string{"sample"}, "Usage: md2card sample"},
		{[]string{"doctor"}, "Usage: md2card doctor"},
		{[]string{"completion"}, "Usage: md2card completion"},
		{[]string{"version"}, "Usage: md2card version"},
		{[]string{"help"}, "Usage: md2card help"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv()
			runHelp(tt.args, env)

			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.want)
			}
			if stderr.Len() != 0 {
				t.Errorf("stderr = %q, want empty", stderr.String())
			}
		})
	}
}

func TestRunHelp_UnknownCommand(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := newTestEnv()
	runHelp([]string{"frobnicate"}, env)

	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestHelpCoversFlags - Help text stays in sync with FlagSets
// ---------------------------------------------------------------------------

func TestHelpCoversFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		fs    *flag.FlagSet
		usage func(io.Writer)
	}{
		{"convert", newConvertFlagSet(&convertFlags{}, io.Discard), printConvertUsage},
		{"watch", newWatchFlagSet(&watchFlags{}, io.Discard), printWatchUsage},
		{"serve", newServeFlagSet(&serveFlags{}, io.Discard), printServeUsage},
		{"images", newImagesFlagSet(&imagesFlags{}, io.Discard), printImagesUsage},
		{"search", newSearchFlagSet(&searchFlags{}, io.Discard), printSearchUsage},
		{"sample", newSampleFlagSet(&sampleFlags{}, io.Discard), printSampleUsage},
		{"doctor", newDoctorFlagSet(&doctorFlags{}, io.Discard), printDoctorUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.usage(&buf)
			help := buf.String()

			tt.fs.VisitAll(func(f *flag.Flag) {
				if !strings.Contains(help, "--"+f.Name) {
					t.Errorf("%s help does not mention --%s", tt.name, f.Name)
				}
			})
		})
	}
}
