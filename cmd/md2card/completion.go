package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2card/internal/theme"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota
	flagBool
	flagNumber
	flagEnum
	flagFile
	flagDir
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // enum
	FileGlob string   // comma-separated, file flags only
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Subcommands []string
	FilePattern string // glob for positional file arguments
}

// completionMeta holds completion hints. Names, types, and descriptions
// come from the FlagSets.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
func flagCompletionMeta() map[string]completionMeta {
	return map[string]completionMeta{
		"theme":        {Values: theme.Names()},
		"bg-direction": {Values: []string{"to right", "to left", "to bottom", "to top", "135deg", "45deg"}},

		"config": {FileGlob: "*.yaml,*.yml"},
		"style":  {FileGlob: "*.css"},
		"css":    {FileGlob: "*.css"},
		"store":  {FileGlob: "*.db"},
		"watch":  {FileGlob: "*.md,*.markdown"},

		"output":     {IsDir: true},
		"download":   {IsDir: true},
		"asset-path": {IsDir: true},
	}
}

// extractFlagsFromFlagSet reads flag definitions from fs, enriched with
// completion metadata.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	meta := flagCompletionMeta()
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int64", "uint", "uint64", "float32", "float64", "duration":
			fd.Type = flagNumber
		default:
			fd.Type = flagString
		}

		if m, ok := meta[f.Name]; ok {
			switch {
			case len(m.Values) > 0:
				fd.Type = flagEnum
				fd.Values = m.Values
			case m.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = m.FileGlob
			case m.IsDir:
				fd.Type = flagDir
			}
		}
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry. Flags come from the same
// FlagSets the commands parse with.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "convert",
			Desc:        "Convert markdown files to card decks",
			Flags:       extractFlagsFromFlagSet(newConvertFlagSet(&convertFlags{}, io.Discard)),
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:        "watch",
			Desc:        "Re-render a deck on every save",
			Flags:       extractFlagsFromFlagSet(newWatchFlagSet(&watchFlags{}, io.Discard)),
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:  "serve",
			Desc:  "Start the HTTP editor backend",
			Flags: extractFlagsFromFlagSet(newServeFlagSet(&serveFlags{}, io.Discard)),
		},
		{
			Name:        "images",
			Desc:        "Manage the image store",
			Flags:       extractFlagsFromFlagSet(newImagesFlagSet(&imagesFlags{}, io.Discard)),
			Subcommands: []string{"add", "list", "rm"},
			FilePattern: "*.png,*.jpg,*.jpeg,*.gif,*.webp",
		},
		{
			Name:  "search",
			Desc:  "Search images by keyword",
			Flags: extractFlagsFromFlagSet(newSearchFlagSet(&searchFlags{}, io.Discard)),
		},
		{
			Name:  "sample",
			Desc:  "Print an example deck",
			Flags: sampleCompletionFlags(),
		},
		{
			Name:  "doctor",
			Desc:  "Check system configuration",
			Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{}, io.Discard)),
		},
		{Name: "completion", Desc: "Generate shell completion script", Subcommands: []string{"bash", "zsh", "fish"}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// sampleCompletionFlags returns the sample flags. Its --output names a
// markdown file, not a directory.
func sampleCompletionFlags() []flagDef {
	flags := extractFlagsFromFlagSet(newSampleFlagSet(&sampleFlags{}, io.Discard))
	for i := range flags {
		if flags[i].Long == "output" {
			flags[i].Type = flagFile
			flags[i].FileGlob = "*.md,*.markdown"
		}
	}
	return flags
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func flagWords(flags []flagDef) string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

// globExtensions turns "*.md,*.markdown" into "md|markdown".
func globExtensions(glob string) string {
	parts := strings.Split(glob, ",")
	for i, p := range parts {
		parts[i] = strings.TrimPrefix(strings.TrimSpace(p), "*.")
	}
	return strings.Join(parts, "|")
}

func quoteSingle(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for md2card\n\n")
	b.WriteString("_md2card() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W '%s' -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		if len(c.Flags) > 0 {
			b.WriteString("        case \"$prev\" in\n")
			for _, f := range c.Flags {
				pattern := "--" + f.Long
				if f.Short != "" {
					pattern += "|-" + f.Short
				}
				switch f.Type {
				case flagEnum:
					fmt.Fprintf(&b, "        %s)\n            local IFS=$'\\n'\n            COMPREPLY=($(compgen -W '%s' -- \"$cur\"))\n            return ;;\n",
						pattern, quoteSingle(strings.Join(f.Values, "\n")))
				case flagFile:
					fmt.Fprintf(&b, "        %s)\n            COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\") $(compgen -d -- \"$cur\"))\n            return ;;\n",
						pattern, globExtensions(f.FileGlob))
				case flagDir:
					fmt.Fprintf(&b, "        %s)\n            COMPREPLY=($(compgen -d -- \"$cur\"))\n            return ;;\n", pattern)
				case flagString, flagNumber:
					fmt.Fprintf(&b, "        %s)\n            return ;;\n", pattern)
				}
			}
			b.WriteString("        esac\n")
			b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W '%s' -- \"$cur\"))\n", flagWords(c.Flags))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}
		if len(c.Subcommands) > 0 {
			b.WriteString("        if [[ ${COMP_CWORD} -eq 2 ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W '%s' -- \"$cur\"))\n", strings.Join(c.Subcommands, " "))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\") $(compgen -d -- \"$cur\"))\n", globExtensions(c.FilePattern))
		}
		if c.Name == "help" {
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W '%s' -- \"$cur\"))\n", commandNames(cmds))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -F _md2card md2card\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", `'\''`)
	s = strings.ReplaceAll(s, "[", `\[`)
	s = strings.ReplaceAll(s, "]", `\]`)
	s = strings.ReplaceAll(s, ":", `\:`)
	return s
}

func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = `"` + zshEscape(v) + `"`
		}
		return ":value:(" + strings.Join(quoted, " ") + ")"
	case flagFile:
		return ":file:_files -g '*.(" + globExtensions(f.FileGlob) + ")'"
	case flagDir:
		return ":directory:_files -/"
	default:
		return ":value: "
	}
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef md2card\n\n")
	b.WriteString("_md2card() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("        _arguments \\\n")
		for _, f := range c.Flags {
			desc := zshEscape(f.Desc)
			if f.Short != "" {
				fmt.Fprintf(&b, "            '(-%s --%s)'{-%s,--%s}'[%s]%s' \\\n", f.Short, f.Long, f.Short, f.Long, desc, zshAction(f))
			} else {
				fmt.Fprintf(&b, "            '--%s[%s]%s' \\\n", f.Long, desc, zshAction(f))
			}
		}
		switch {
		case len(c.Subcommands) > 0:
			fmt.Fprintf(&b, "            '1:subcommand:(%s)' \\\n", strings.Join(c.Subcommands, " "))
			if c.FilePattern != "" {
				fmt.Fprintf(&b, "            '*:file:_files -g \"*.(%s)\"'\n", globExtensions(c.FilePattern))
			} else {
				b.WriteString("            '*: :'\n")
			}
		case c.FilePattern != "":
			fmt.Fprintf(&b, "            '*:file:_files -g \"*.(%s)\"'\n", globExtensions(c.FilePattern))
		case c.Name == "help":
			fmt.Fprintf(&b, "            '1:command:(%s)'\n", commandNames(cmds))
		default:
			b.WriteString("            '*: :'\n")
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _md2card md2card\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for md2card\n\n")
	b.WriteString("complete -c md2card -f\n\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c md2card -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}

	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		b.WriteString("\n")
		for _, sub := range c.Subcommands {
			fmt.Fprintf(&b, "complete -c md2card -n '%s' -a %s\n", cond, sub)
		}
		if c.FilePattern != "" {
			for _, ext := range strings.Split(globExtensions(c.FilePattern), "|") {
				fmt.Fprintf(&b, "complete -c md2card -n '%s' -k -a '(__fish_complete_suffix .%s)'\n", cond, ext)
			}
		}
		if c.Name == "help" {
			fmt.Fprintf(&b, "complete -c md2card -n '%s' -a '%s'\n", cond, commandNames(cmds))
		}
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c md2card -n '%s' -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				quoted := make([]string, len(f.Values))
				for i, v := range f.Values {
					quoted[i] = `"` + v + `"`
				}
				line += " -x -a '" + fishEscape(strings.Join(quoted, " ")) + "'"
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			line += " -d '" + fishEscape(f.Desc) + "'"
			b.WriteString(line + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(md2card completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(md2card completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    md2card completion fish > ~/.config/fish/completions/md2card.fish")
}
