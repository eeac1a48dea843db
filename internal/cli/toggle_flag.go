package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName       = "bool"
	toggleFlagTrueLiteral    = "true"
	toggleFlagAcceptedValues = "true, false, yes, no, on, off, 1, 0"
	errorToggleValueFormat   = "invalid boolean value %q for --%s; accepted values: %s"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// parseToggleLiteral accepts the literals above, case-insensitively. Blank means true.
func parseToggleLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	parsed, known := toggleLiterals[normalized]
	return parsed, known
}

// toggleValue is a pflag.Value for switches that accept "--name", "--name=no" and,
// after normalizeToggleArguments, "--name no".
type toggleValue struct {
	target *bool
	name   string
}

func (value *toggleValue) Set(input string) error {
	parsed, known := parseToggleLiteral(input)
	if !known {
		return fmt.Errorf(errorToggleValueFormat, input, value.name, toggleFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleFlagTypeName
}

func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&toggleValue{target: target, name: name}, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = strconv.FormatBool(defaultValue)
		lookup.NoOptDefVal = toggleFlagTrueLiteral
	}
}

// normalizeToggleArguments joins "--name value" into "--name=value" for toggle flags
// anywhere in the command tree when value is a boolean literal.
func normalizeToggleArguments(rootCommand *cobra.Command, arguments []string) []string {
	toggleNames := map[string]struct{}{}
	collectToggleNames(rootCommand, toggleNames)
	if len(toggleNames) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isLongFlag := strings.CutPrefix(argument, "--")
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, isToggle := toggleNames[flagName]; isToggle {
				nextArgument := arguments[index+1]
				if _, known := toggleLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; known {
					normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, nextArgument))
					index++
					continue
				}
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectToggleNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if _, isToggle := flag.Value.(*toggleValue); isToggle {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectToggleNames(child, target)
	}
}
