package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/promptgen/internal/config"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	profileUse              = "profile"
	profileShortDescription = "manage saved profiles"
	profileLongDescription  = `A profile stores instructions, custom ignore patterns, the project folder and the
main file list. Profiles live in the configured profiles directory as <name>.yaml.`

	profileSaveUse                = "save <name> [dir]"
	profileSaveShortDescription   = "assemble a prompt and save its settings as a profile"
	profileShowUse                = "show <name>"
	profileShowShortDescription   = "print a saved profile"
	profileListUse                = "list"
	profileListShortDescription   = "list saved profiles"
	profileDeleteUse              = "delete <name>"
	profileDeleteShortDescription = "delete a saved profile"

	profileSavedTemplate   = "Saved profile %s to %s\n"
	profileDeletedTemplate = "Deleted profile %s\n"
	profileFieldTemplate   = "%s: %s\n"
	profileListItemPrefix  = "  - "
	profileBlockTemplate   = "%s:\n"
)

func (app *application) newProfileCommand() *cobra.Command {
	profileCommand := &cobra.Command{
		Use:   profileUse,
		Short: profileShortDescription,
		Long:  profileLongDescription,
	}
	profileCommand.AddCommand(
		app.newProfileSaveCommand(),
		app.newProfileShowCommand(),
		app.newProfileListCommand(),
		app.newProfileDeleteCommand(),
	)
	return profileCommand
}

func (app *application) newProfileSaveCommand() *cobra.Command {
	var inputs promptInputs
	saveCommand := &cobra.Command{
		Use:   profileSaveUse,
		Short: profileSaveShortDescription,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(command *cobra.Command, arguments []string) error {
			name := arguments[0]
			if nameError := config.ValidateProfileName(name); nameError != nil {
				return nameError
			}
			store, storeError := app.profileStore()
			if storeError != nil {
				return storeError
			}
			activePipeline, startError := app.startPipeline(command.Context(), command, arguments[1:], &inputs, nil)
			if startError != nil {
				return startError
			}
			defer activePipeline.close()
			savedPath, saveError := store.Save(activePipeline.session.Profile(name))
			if saveError != nil {
				return saveError
			}
			_, writeError := fmt.Fprintf(app.stdout, profileSavedTemplate, name, savedPath)
			return writeError
		},
	}
	inputs.register(saveCommand)
	return saveCommand
}

func (app *application) newProfileShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   profileShowUse,
		Short: profileShowShortDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			store, storeError := app.profileStore()
			if storeError != nil {
				return storeError
			}
			record, loadError := store.Load(arguments[0])
			if loadError != nil {
				return loadError
			}
			return writeProfile(app.stdout, record)
		},
	}
}

func (app *application) newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   profileListUse,
		Short: profileListShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			store, storeError := app.profileStore()
			if storeError != nil {
				return storeError
			}
			names, listError := store.List()
			if listError != nil {
				return listError
			}
			for _, name := range names {
				if _, writeError := fmt.Fprintln(app.stdout, name); writeError != nil {
					return writeError
				}
			}
			return nil
		},
	}
}

func (app *application) newProfileDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   profileDeleteUse,
		Short: profileDeleteShortDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			store, storeError := app.profileStore()
			if storeError != nil {
				return storeError
			}
			if deleteError := store.Delete(arguments[0]); deleteError != nil {
				return deleteError
			}
			_, writeError := fmt.Fprintf(app.stdout, profileDeletedTemplate, arguments[0])
			return writeError
		},
	}
}

// writeProfile prints record with one main file and one custom pattern per list item.
func writeProfile(writer io.Writer, record config.ProfileRecord) error {
	if _, err := fmt.Fprintf(writer, profileFieldTemplate, "name", record.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, profileFieldTemplate, "project_folder", record.ProjectFolder); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, profileFieldTemplate, "instructions", record.Instructions); err != nil {
		return err
	}
	blocks := []struct {
		label string
		items []string
	}{
		{label: "custom_ignores", items: utils.SplitNonEmptyLines(record.CustomIgnores)},
		{label: "main_files", items: record.MainFileList()},
	}
	for _, block := range blocks {
		if _, err := fmt.Fprintf(writer, profileBlockTemplate, block.label); err != nil {
			return err
		}
		for _, item := range block.items {
			if _, err := fmt.Fprintln(writer, profileListItemPrefix+item); err != nil {
				return err
			}
		}
	}
	return nil
}
