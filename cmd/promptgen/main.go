package main

import (
	"fmt"

	"github.com/temirov/promptgen/internal/cli"
	"github.com/temirov/promptgen/internal/utils"
)

// main is the entry point for the promptgen command.
func main() {
	loggerInstance, logLevel, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(cli.Options{Logger: loggerInstance, LogLevel: &logLevel}); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
