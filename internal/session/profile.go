package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/promptgen/internal/config"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	warningProjectFolderMissingFormat = "Project folder from config not found: %s"
	warningMainFileMissingFormat      = "Main file from config not found (skipped): %s"
	mainFileSeparator                 = "\n"
)

// Profile captures the current settings under name.
func (session *Session) Profile(name string) config.ProfileRecord {
	return config.ProfileRecord{
		Name:          name,
		Instructions:  session.instructions,
		CustomIgnores: session.customIgnoreText,
		ProjectFolder: session.projectContext.RootDirectory,
		MainFiles:     strings.Join(session.mainFiles, mainFileSeparator),
	}
}

// ApplyProfile replaces the session settings with record. A project folder or main file
// that no longer exists is dropped and reported in the returned warnings. A changed project
// root triggers a full refresh; otherwise the prompt is refreshed when any main file was
// loaded or the record lists none.
func (session *Session) ApplyProfile(record config.ProfileRecord) []string {
	var warnings []string
	session.orchestrator.CancelDebounce(debounceKeyInstructions)
	session.orchestrator.CancelDebounce(debounceKeyCustomIgnores)
	session.instructions = record.Instructions
	session.customIgnoreText = record.CustomIgnores
	session.projectContext.CustomPatterns = config.ParseCustomPatterns(record.CustomIgnores)

	var projectRoot string
	if projectFolder := strings.TrimSpace(record.ProjectFolder); projectFolder != "" {
		absoluteProjectFolder, absError := filepath.Abs(projectFolder)
		if absError == nil && utils.IsDirectory(absoluteProjectFolder) {
			projectRoot = absoluteProjectFolder
		} else {
			warnings = append(warnings, fmt.Sprintf(warningProjectFolderMissingFormat, projectFolder))
		}
	}
	projectChanged := projectRoot != session.projectContext.RootDirectory
	session.projectContext.RootDirectory = projectRoot

	session.mainFiles = nil
	loadedAnyMainFile := false
	for _, mainFile := range record.MainFileList() {
		absoluteMainFile, absError := filepath.Abs(mainFile)
		if absError != nil || !utils.IsRegularFile(absoluteMainFile) {
			warnings = append(warnings, fmt.Sprintf(warningMainFileMissingFormat, mainFile))
			continue
		}
		session.appendMainFile(absoluteMainFile)
		loadedAnyMainFile = true
	}

	for _, warning := range warnings {
		session.logger.Warn(warning, zap.String("profile", record.Name))
	}
	session.logger.Info("loaded configuration", zap.String("profile", record.Name))

	switch {
	case projectChanged:
		session.RequestFullRefresh()
	case loadedAnyMainFile || strings.TrimSpace(record.MainFiles) == "":
		session.RequestPromptRefresh()
	}
	return warnings
}
