// Package configstore persists named run configurations in a single keyed JSON
// file. The store is the only owner of persisted configurations; callers
// receive copies.
package configstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/snapgrab/snapgrab/internal/types"
	"github.com/snapgrab/snapgrab/internal/utils"
)

var (
	// ErrDuplicateName reports a create with an already-used configuration name.
	ErrDuplicateName = errors.New("configuration name already exists")
	// ErrNotFound reports an operation on an absent configuration name.
	ErrNotFound = errors.New("configuration not found")
	// ErrConfigCorrupt reports an unparseable store file. The file is left in
	// place so user data is never silently discarded.
	ErrConfigCorrupt = errors.New("configuration store is corrupt")
)

const (
	storeReadErrorFormat    = "reading configuration store %s: %w"
	storeDecodeErrorFormat  = "%w: %s: %v"
	storeEncodeErrorFormat  = "encoding configuration store: %w"
	storeWriteErrorFormat   = "writing configuration store %s: %w"
	duplicateNameFormat     = "%w: %s"
	notFoundFormat          = "%w: %s"
	homeDirectoryErrorText  = "determine home directory: %w"
	storeFileJSONIndent     = "  "
	storeFilePermissionMode = 0o644
)

// Store reads and writes the configuration file at a fixed path. The path is
// injected so tests run against isolated temporary stores.
type Store struct {
	filePath string
}

// NewStore constructs a store persisting to filePath.
func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// DefaultStorePath returns the per-user location of the configuration store.
func DefaultStorePath() (string, error) {
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", fmt.Errorf(homeDirectoryErrorText, homeError)
	}
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigurationStoreFileName), nil
}

// Load reads the persisted store. An absent file yields an empty mapping; a
// present but unparseable file yields ErrConfigCorrupt.
func (store *Store) Load() (map[string]types.Configuration, error) {
	fileContent, readError := os.ReadFile(store.filePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return map[string]types.Configuration{}, nil
		}
		return nil, fmt.Errorf(storeReadErrorFormat, store.filePath, readError)
	}

	configurations := map[string]types.Configuration{}
	if decodeError := json.Unmarshal(fileContent, &configurations); decodeError != nil {
		return nil, fmt.Errorf(storeDecodeErrorFormat, ErrConfigCorrupt, store.filePath, decodeError)
	}
	for configurationName, configuration := range configurations {
		configuration.Name = configurationName
		configurations[configurationName] = configuration
	}
	return configurations, nil
}

// Save atomically persists the full mapping. The write path locks the
// destination and replaces it via a temporary file, so an interrupted save
// leaves the previous store intact.
func (store *Store) Save(configurations map[string]types.Configuration) error {
	encodedStore, encodeError := json.MarshalIndent(configurations, "", storeFileJSONIndent)
	if encodeError != nil {
		return fmt.Errorf(storeEncodeErrorFormat, encodeError)
	}
	if writeError := lockedAtomicWrite(store.filePath, encodedStore); writeError != nil {
		return fmt.Errorf(storeWriteErrorFormat, store.filePath, writeError)
	}
	return nil
}

// Create persists a new configuration, failing with ErrDuplicateName when the
// name is taken. Timestamps are set by the store.
func (store *Store) Create(configuration types.Configuration) error {
	configurations, loadError := store.Load()
	if loadError != nil {
		return loadError
	}
	if _, exists := configurations[configuration.Name]; exists {
		return fmt.Errorf(duplicateNameFormat, ErrDuplicateName, configuration.Name)
	}
	currentTime := time.Now().UTC()
	configuration.CreatedAt = currentTime
	configuration.UpdatedAt = currentTime
	configurations[configuration.Name] = configuration
	return store.Save(configurations)
}

// UpdateFields holds the optional fields of an edit; nil fields keep their
// persisted values.
type UpdateFields struct {
	TargetDirectory *string
	ProjectName     *string
	OutputFileName  *string
	IncludeContent  *bool
}

// Update merges the provided fields into the named configuration and refreshes
// UpdatedAt. Fails with ErrNotFound when the name is absent.
func (store *Store) Update(configurationName string, fields UpdateFields) (types.Configuration, error) {
	configurations, loadError := store.Load()
	if loadError != nil {
		return types.Configuration{}, loadError
	}
	configuration, exists := configurations[configurationName]
	if !exists {
		return types.Configuration{}, fmt.Errorf(notFoundFormat, ErrNotFound, configurationName)
	}

	if fields.TargetDirectory != nil {
		configuration.TargetDirectory = *fields.TargetDirectory
	}
	if fields.ProjectName != nil {
		configuration.ProjectName = *fields.ProjectName
	}
	if fields.OutputFileName != nil {
		configuration.OutputFileName = *fields.OutputFileName
	}
	if fields.IncludeContent != nil {
		configuration.IncludeContent = *fields.IncludeContent
	}
	configuration.Name = configurationName
	configuration.UpdatedAt = time.Now().UTC()

	configurations[configurationName] = configuration
	if saveError := store.Save(configurations); saveError != nil {
		return types.Configuration{}, saveError
	}
	return configuration, nil
}

// Delete removes the named configuration. Fails with ErrNotFound when absent.
func (store *Store) Delete(configurationName string) error {
	configurations, loadError := store.Load()
	if loadError != nil {
		return loadError
	}
	if _, exists := configurations[configurationName]; !exists {
		return fmt.Errorf(notFoundFormat, ErrNotFound, configurationName)
	}
	delete(configurations, configurationName)
	return store.Save(configurations)
}

// Get returns one configuration by name.
func (store *Store) Get(configurationName string) (types.Configuration, error) {
	configurations, loadError := store.Load()
	if loadError != nil {
		return types.Configuration{}, loadError
	}
	configuration, exists := configurations[configurationName]
	if !exists {
		return types.Configuration{}, fmt.Errorf(notFoundFormat, ErrNotFound, configurationName)
	}
	return configuration, nil
}

// List returns every configuration ordered by name.
func (store *Store) List() ([]types.Configuration, error) {
	configurations, loadError := store.Load()
	if loadError != nil {
		return nil, loadError
	}
	ordered := make([]types.Configuration, 0, len(configurations))
	for _, configuration := range configurations {
		ordered = append(ordered, configuration)
	}
	sort.Slice(ordered, func(firstIndex, secondIndex int) bool {
		return ordered[firstIndex].Name < ordered[secondIndex].Name
	})
	return ordered, nil
}
