package engine

import (
	"context"
	"fmt"
	"strings"
)

// Doc is the structured form of a verb's documentation.
type Doc struct {
	// Summary is the text up to the first blank line.
	Summary string

	// Description is the text between the summary and the Options: or
	// Examples: marker. Paragraphs are separated by newlines.
	Description string

	// Options holds one entry per option; continuation lines are joined.
	Options []string

	// Examples holds one entry per example; continuation lines are joined.
	Examples []string
}

const (
	optionsMarker  = "Options:"
	examplesMarker = "Examples:"
)

// ParseDoc splits documentation text into summary, description, options and
// examples. Lines are trimmed; entries under Options: and Examples: start
// with "-" and lines that do not are appended to the entry before them.
func ParseDoc(text string) Doc {
	if strings.TrimSpace(text) == "" {
		return Doc{}
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}

	descIdx := indexOf(lines, "", 0)
	exIdx := indexOf(lines, examplesMarker, 0)
	optIdx := exIdx
	if descIdx < len(lines) {
		if i := indexOf(lines, optionsMarker, descIdx); i < len(lines) {
			optIdx = i
		}
	}

	var doc Doc
	doc.Summary = strings.Join(nonEmpty(lines[:descIdx]), " ")
	doc.Description = joinParagraphs(span(lines, descIdx+1, optIdx))
	doc.Options = groupEntries(nonEmpty(span(lines, optIdx, exIdx)))
	doc.Examples = groupEntries(nonEmpty(span(lines, exIdx, len(lines))))
	return doc
}

// indexOf returns the first index >= from holding want, or len(lines).
func indexOf(lines []string, want string, from int) int {
	for i := from; i < len(lines); i++ {
		if lines[i] == want {
			return i
		}
	}
	return len(lines)
}

func span(lines []string, lo, hi int) []string {
	if lo >= hi || lo >= len(lines) {
		return nil
	}
	return lines[lo:min(hi, len(lines))]
}

func nonEmpty(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// joinParagraphs joins consecutive lines with spaces; each blank line starts
// a new paragraph.
func joinParagraphs(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(l)
		b.WriteString(" ")
	}
	paragraphs := strings.Split(b.String(), "\n")
	for i, p := range paragraphs {
		paragraphs[i] = strings.TrimRight(p, " ")
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n"))
}

// groupEntries groups lines into entries starting at each "-" line. Lines
// before the first entry are dropped.
func groupEntries(lines []string) []string {
	var out []string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "-"):
			out = append(out, l)
		case len(out) > 0:
			out[len(out)-1] += " " + l
		}
	}
	return out
}

const helpDoc = `Print this help.

Without arguments all verbs and settings are listed. With arguments the usage
of each named verb or setting is printed.

Examples:
- lets help: list all verbs and settings
- lets help set: show how to use the set verb
- lets help verbose: show the verbose setting`

func helpVerb(_ context.Context, e *Engine, _ string, args []string) int {
	if len(args) == 0 {
		e.printOverview()
		return ExitOK
	}

	for _, arg := range args {
		verbs := e.ResolveVerbs(arg)
		setting, err := e.ResolveSetting(arg)
		if err != nil && !IsUnknown(err) {
			e.report(err)
			return ExitFailure
		}
		if len(verbs) == 0 && setting == nil {
			e.Info("Unknown option: " + arg)
			return ExitFailure
		}
		if len(verbs) > 1 {
			e.report(NewAmbiguousError("verb", arg, qualifiedNames(verbs)))
			return ExitFailure
		}
		if len(verbs) == 1 {
			e.printVerbHelp(verbs[0])
		}
		if setting != nil {
			e.printSettingHelp(arg, setting)
		}
	}
	return ExitOK
}

func (e *Engine) printOverview() {
	p := e.out
	prog := e.program

	p.Print(fmt.Sprintf("Usage: %s [VERB] [OPTIONS]", prog), 0)
	p.Print("", 0)
	p.Title("DESCRIPTION")
	p.Print(fmt.Sprintf("  '%s' simplifies the execution of common tasks. It takes a verb and options from "+
		"the command line and runs the associated callback function to complete the task. A simple "+
		"command could look like '%[1]s build hello_world'. The options are chosen such that natural "+
		"sentences can be constructed: '%[1]s build hello_world clean' to clean the output folder prior "+
		"to building or '%[1]s set verbose on' to turn verbose mode permanently on. The order of "+
		"options is arbitrary unless explicitly stated otherwise.", prog), 2)
	p.Print("", 0)
	p.Print(fmt.Sprintf("  Settings are used to store semi static options persistently such that these can "+
		"be omitted from the command line. An example could be the build flavor which is typically set "+
		"to 'debug'. Settings can typically be overridden at the command line. '%s build hello_world "+
		"release' will force hello world to be built for release even when the default is debug.", prog), 2)
	p.Print("", 0)
	p.Print("  A verb exists of two parts: [CONTEXT].[VERB_NAME]. The context is used to distinguish "+
		"between identical verbs exposed by multiple contexts. If the verb name is unique across all "+
		"contexts, the context can be omitted.", 2)
	p.Print("", 0)

	p.Title("AVAILABLE VERBS:")
	width := 0
	for _, v := range e.verbs {
		width = max(width, len(v.QualifiedName()))
	}
	for _, v := range e.verbs {
		p.Print(fmt.Sprintf("  %*s: %s", width, v.QualifiedName(), v.doc.Summary), width+4)
	}
	p.Print("", 0)
	p.Print(fmt.Sprintf("Use '%s help [VERB]' for more information about the verb", prog), 0)
	p.Print("", 0)

	p.Title("AVAILABLE SETTINGS:")
	visible := e.VisibleSettings()
	width = 0
	for _, s := range visible {
		width = max(width, len(s.QualifiedName()))
	}
	for _, s := range visible {
		p.Print(fmt.Sprintf("  %*s: %s", width, s.QualifiedName(), s.description), width+4)
	}
	p.Print("", 0)
	p.Print(fmt.Sprintf("Use '%s help [SETTING]' for more information about the setting", prog), 0)
}

func (e *Engine) printVerbHelp(v *Verb) {
	p := e.out
	doc := v.doc

	p.Print(fmt.Sprintf("Usage: %s %s [OPTIONS]", e.program, v.QualifiedName()), 0)
	p.Print("", 0)
	p.Title("SUMMARY")
	p.Print("  "+doc.Summary, 2)
	if doc.Description != "" {
		p.Print("", 0)
		p.Title("DESCRIPTION")
		p.Print("  "+doc.Description, 2)
	}
	if len(doc.Options) > 0 {
		p.Print("", 0)
		p.Title("OPTIONS")
		for _, o := range doc.Options {
			p.Print("  "+o, entryIndent(o))
		}
	}
	if len(doc.Examples) > 0 {
		p.Print("", 0)
		p.Title("EXAMPLES")
		for _, ex := range doc.Examples {
			p.Print("  "+ex, entryIndent(ex))
		}
	}
}

// entryIndent aligns continuation lines of an option or example with the
// text after its "name:" prefix.
func entryIndent(entry string) int {
	head, _, _ := strings.Cut(entry, ":")
	return len(head) + 4
}

func (e *Engine) printSettingHelp(arg string, s *Setting) {
	p := e.out
	prog := e.program

	p.Title("DESCRIPTION")
	p.Print("  "+s.description, 2)
	p.Print("  Type: "+s.Kind().String(), 0)
	p.Print("  Current value: "+s.value.String(), 2)
	if len(s.options) > 0 {
		p.Print("  Valid options: "+strings.Join(s.options, ", "), 0)
	}
	p.Print("", 0)
	p.Title("USAGE")
	switch s.Kind() {
	case KindDict:
		p.Print(fmt.Sprintf("  %s set %s [key1:value1] [key2:value2] ...", prog, arg), 0)
		p.Print(fmt.Sprintf("  %s add %s [key1:value1] [key2:value2] ...", prog, arg), 0)
		p.Print(fmt.Sprintf("  %s remove %s [key1] [key2] ...", prog, arg), 0)
	case KindList:
		p.Print(fmt.Sprintf("  %s set %s [value1] [value2] ...", prog, arg), 0)
		p.Print(fmt.Sprintf("  %s add %s [value1] [value2] ...", prog, arg), 0)
		p.Print(fmt.Sprintf("  %s remove %s [value1] [value2] ...", prog, arg), 0)
	default:
		choice := "value"
		if len(s.options) > 0 {
			choice = strings.Join(s.options, "|")
		}
		p.Print(fmt.Sprintf("  %s set %s [%s]", prog, arg, choice), 0)
	}
	p.Print(fmt.Sprintf("  %s get %s", prog, arg), 0)
}
