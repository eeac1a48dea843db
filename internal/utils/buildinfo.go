package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	develBuildVersion  = "(devel)"
	gitExecutableName  = "git"
	gitNotFoundMessage = ".git directory not found in or above %s"
)

// Version is injected at link time with -ldflags "-X github.com/temirov/promptgen/internal/utils.Version=v1.2.3".
var Version string

// GetApplicationVersion reports the linked version, the module version from build info,
// or the nearest git tag, in that order.
func GetApplicationVersion() string {
	if trimmed := strings.TrimSpace(Version); trimmed != "" {
		return trimmed
	}

	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != develBuildVersion {
		return buildInfo.Main.Version
	}

	gitDirectoryPath, gitDirectoryError := findGitDirectory(".")
	if gitDirectoryError != nil || gitDirectoryPath == "" {
		return unknownVersion
	}
	for _, describeArguments := range [][]string{
		{"describe", "--tags", "--exact-match"},
		{"describe", "--tags", "--long", "--dirty"},
	} {
		// #nosec G204
		describeCommand := exec.Command(gitExecutableName, describeArguments...)
		describeCommand.Dir = gitDirectoryPath
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput))
		}
	}
	return unknownVersion
}

func findGitDirectory(startDirectory string) (string, error) {
	absoluteStartDirectory, errorAbsolute := filepath.Abs(startDirectory)
	if errorAbsolute != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, errorAbsolute)
	}

	for currentDirectory := absoluteStartDirectory; ; {
		fileInformation, errorStat := os.Stat(filepath.Join(currentDirectory, GitDirectoryName))
		if errorStat == nil && fileInformation.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", fmt.Errorf(gitNotFoundMessage, absoluteStartDirectory)
		}
		currentDirectory = parentDirectory
	}
}
