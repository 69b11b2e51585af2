package resources

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed usage.txt
var usageText string

var usageTemplate = template.Must(template.New("usage").Parse(usageText))

type usageData struct {
	Program  string
	Settings string
}

// Usage renders the usage message for program. settingsHint describes where
// the settings file is looked up.
func Usage(program, settingsHint string) (string, error) {
	var builder strings.Builder
	data := usageData{Program: program, Settings: settingsHint}
	if err := usageTemplate.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("render usage: %w", err)
	}
	return builder.String(), nil
}

// MustUsage returns the usage message or panics on error.
func MustUsage(program, settingsHint string) string {
	usage, err := Usage(program, settingsHint)
	if err != nil {
		panic(err)
	}
	return usage
}
