// Package taskcmd renders Azure Pipelines logging commands.
//
// A logging command is a single stdout line of the form
//
//	##vso[area.action key=value;key=value;]message
//
// which the agent intercepts to set variables, log issues or complete the task.
package taskcmd

import "strings"

const prefix = "##vso["

// Property is one key=value pair of a command. Properties with an empty
// value are omitted from the rendered command.
type Property struct {
	Key   string
	Value string
}

// Result is the task completion result.
type Result string

const (
	Succeeded Result = "Succeeded"
	Failed    Result = "Failed"
)

// Command renders a logging command.
func Command(name string, props []Property, message string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(name)

	first := true
	for _, p := range props {
		if p.Value == "" {
			continue
		}
		if first {
			sb.WriteByte(' ')
			first = false
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(escapeProperty(p.Value))
		sb.WriteByte(';')
	}

	sb.WriteByte(']')
	sb.WriteString(escapeData(message))
	return sb.String()
}

// SetVariable renders task.setvariable.
func SetVariable(name, value string, isOutput bool) string {
	output := ""
	if isOutput {
		output = "true"
	}
	return Command("task.setvariable", []Property{
		{Key: "variable", Value: name},
		{Key: "isOutput", Value: output},
	}, value)
}

// Debug renders task.debug.
func Debug(message string) string {
	return Command("task.debug", nil, message)
}

// Error renders an error issue.
func Error(message string) string {
	return Command("task.issue", []Property{{Key: "type", Value: "error"}}, message)
}

// Complete renders task.complete with the given result.
func Complete(result Result, message string) string {
	return Command("task.complete", []Property{{Key: "result", Value: string(result)}}, message)
}

var (
	dataEscaper = strings.NewReplacer(
		"%", "%AZP25",
		"\r", "%0D",
		"\n", "%0A",
	)
	propertyEscaper = strings.NewReplacer(
		"%", "%AZP25",
		"\r", "%0D",
		"\n", "%0A",
		"]", "%5D",
		";", "%3B",
	)
)

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}

func escapeProperty(s string) string {
	return propertyEscaper.Replace(s)
}
