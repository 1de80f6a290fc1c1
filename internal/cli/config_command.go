package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapgrab/snapgrab/internal/configstore"
	"github.com/snapgrab/snapgrab/internal/types"
	"github.com/snapgrab/snapgrab/internal/utils"
)

const (
	configListUse    = "list"
	configShowUse    = "show <name>"
	configCreateUse  = "create <name>"
	configEditUse    = "edit <name>"
	configDeleteUse  = "delete <name>"
	configListShort  = "list stored configurations"
	configShowShort  = "show one configuration"
	configCreateDesc = "store a new named configuration"
	configEditDesc   = "update fields of a stored configuration"
	configDeleteDesc = "remove a stored configuration"

	configListEmptyMessage  = "no configurations stored"
	configListEntryFormat   = "%s\t%s\t%s\n"
	configShowFormat        = "name:             %s\ntarget directory: %s\nproject name:     %s\noutput file name: %s\ninclude content:  %t\ncreated:          %s\nupdated:          %s\n"
	configCreatedFormat     = "configuration %q created\n"
	configUpdatedFormat     = "configuration %q updated\n"
	configDeletedFormat     = "configuration %q deleted\n"
	configContentOnMarker   = "content"
	configContentOffMarker  = "tree-only"
	requiredDirectoryError  = "a target directory is required; pass --" + directoryFlagName
)

// configFlagValues stores create/edit flag values.
type configFlagValues struct {
	directory      string
	project        string
	outputFileName string
	includeContent bool
}

// createConfigCommand returns the config subcommand tree.
func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
	}
	configCommand.AddCommand(
		createConfigListCommand(),
		createConfigShowCommand(),
		createConfigCreateCommand(),
		createConfigEditCommand(),
		createConfigDeleteCommand(),
	)
	return configCommand
}

// openDefaultStore constructs the store at its per-user location.
func openDefaultStore() (*configstore.Store, error) {
	storePath, storePathError := configstore.DefaultStorePath()
	if storePathError != nil {
		return nil, storePathError
	}
	return configstore.NewStore(storePath), nil
}

func createConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   configListUse,
		Short: configListShort,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			store, storeError := openDefaultStore()
			if storeError != nil {
				return storeError
			}
			configurations, listError := store.List()
			if listError != nil {
				return listError
			}
			if len(configurations) == 0 {
				fmt.Println(configListEmptyMessage)
				return nil
			}
			for _, configuration := range configurations {
				contentMarker := configContentOffMarker
				if configuration.IncludeContent {
					contentMarker = configContentOnMarker
				}
				fmt.Printf(configListEntryFormat, configuration.Name, configuration.TargetDirectory, contentMarker)
			}
			return nil
		},
	}
}

func createConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   configShowUse,
		Short: configShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			store, storeError := openDefaultStore()
			if storeError != nil {
				return storeError
			}
			configuration, lookupError := store.Get(arguments[0])
			if lookupError != nil {
				return lookupError
			}
			fmt.Printf(configShowFormat,
				configuration.Name,
				configuration.TargetDirectory,
				configuration.ProjectName,
				configuration.OutputFileName,
				configuration.IncludeContent,
				utils.FormatTimestamp(configuration.CreatedAt),
				utils.FormatTimestamp(configuration.UpdatedAt),
			)
			return nil
		},
	}
}

func createConfigCreateCommand() *cobra.Command {
	values := configFlagValues{includeContent: true}

	createCommand := &cobra.Command{
		Use:   configCreateUse,
		Short: configCreateDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if values.directory == "" {
				return fmt.Errorf(requiredDirectoryError)
			}
			targetDirectory, targetError := resolveTargetDirectory(values.directory)
			if targetError != nil {
				return targetError
			}

			configurationName := arguments[0]
			projectName := values.project
			if projectName == "" {
				projectName = configurationName
			}
			outputFileName := values.outputFileName
			if outputFileName == "" {
				outputFileName = fmt.Sprintf(defaultOutputFileNameFormat, projectName)
			}

			store, storeError := openDefaultStore()
			if storeError != nil {
				return storeError
			}
			createError := store.Create(types.Configuration{
				Name:            configurationName,
				TargetDirectory: targetDirectory,
				ProjectName:     projectName,
				OutputFileName:  outputFileName,
				IncludeContent:  values.includeContent,
			})
			if createError != nil {
				return createError
			}
			fmt.Printf(configCreatedFormat, configurationName)
			return nil
		},
	}

	createCommand.Flags().StringVar(&values.directory, directoryFlagName, "", directoryFlagDescription)
	createCommand.Flags().StringVar(&values.project, projectFlagName, "", projectFlagDescription)
	createCommand.Flags().StringVar(&values.outputFileName, outputFlagName, "", outputFlagDescription)
	createCommand.Flags().BoolVar(&values.includeContent, contentFlagName, true, contentFlagDescription)
	return createCommand
}

func createConfigEditCommand() *cobra.Command {
	var values configFlagValues

	editCommand := &cobra.Command{
		Use:   configEditUse,
		Short: configEditDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			flagSet := command.Flags()
			var fields configstore.UpdateFields

			if flagSet.Changed(directoryFlagName) {
				targetDirectory, targetError := resolveTargetDirectory(values.directory)
				if targetError != nil {
					return targetError
				}
				fields.TargetDirectory = &targetDirectory
			}
			if flagSet.Changed(projectFlagName) {
				fields.ProjectName = &values.project
			}
			if flagSet.Changed(outputFlagName) {
				fields.OutputFileName = &values.outputFileName
			}
			if flagSet.Changed(contentFlagName) {
				fields.IncludeContent = &values.includeContent
			}

			store, storeError := openDefaultStore()
			if storeError != nil {
				return storeError
			}
			if _, updateError := store.Update(arguments[0], fields); updateError != nil {
				return updateError
			}
			fmt.Printf(configUpdatedFormat, arguments[0])
			return nil
		},
	}

	editCommand.Flags().StringVar(&values.directory, directoryFlagName, "", directoryFlagDescription)
	editCommand.Flags().StringVar(&values.project, projectFlagName, "", projectFlagDescription)
	editCommand.Flags().StringVar(&values.outputFileName, outputFlagName, "", outputFlagDescription)
	editCommand.Flags().BoolVar(&values.includeContent, contentFlagName, true, contentFlagDescription)
	return editCommand
}

func createConfigDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   configDeleteUse,
		Short: configDeleteDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			store, storeError := openDefaultStore()
			if storeError != nil {
				return storeError
			}
			if deleteError := store.Delete(arguments[0]); deleteError != nil {
				return deleteError
			}
			fmt.Printf(configDeletedFormat, arguments[0])
			return nil
		},
	}
}
