package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/viper"
)

const (
	profileFileExtension = ".yaml"
	profileConfigType    = "yaml"

	profileKeyInstructions  = "instructions"
	profileKeyCustomIgnores = "custom_ignores"
	profileKeyProjectFolder = "project_folder"
	profileKeyMainFiles     = "main_files"
)

var (
	// ErrInvalidProfileName is returned for empty names or names with characters other than letters, digits, '_' and '-'.
	ErrInvalidProfileName = errors.New("profile name: letters, numbers, _, - only")
	// ErrProfileNotFound is returned when no profile file exists for a name.
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRecord is one saved set of user settings.
type ProfileRecord struct {
	Name          string `mapstructure:"-"`
	Instructions  string `mapstructure:"instructions"`
	CustomIgnores string `mapstructure:"custom_ignores"`
	ProjectFolder string `mapstructure:"project_folder"`
	// MainFiles holds newline-joined absolute paths.
	MainFiles string `mapstructure:"main_files"`
}

// MainFileList splits MainFiles into trimmed non-empty paths.
func (record ProfileRecord) MainFileList() []string {
	var paths []string
	for _, line := range strings.Split(record.MainFiles, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}

// ProfileStore persists profiles as <directory>/<name>.yaml.
type ProfileStore struct {
	directory string
}

// NewProfileStore returns a store rooted at directory. The directory is created on first save.
func NewProfileStore(directory string) *ProfileStore {
	return &ProfileStore{directory: directory}
}

// Directory returns the store location.
func (store *ProfileStore) Directory() string {
	return store.directory
}

// ValidateProfileName reports ErrInvalidProfileName unless name is non-empty and
// consists of letters, digits, '_' or '-'.
func ValidateProfileName(name string) error {
	if name == "" {
		return ErrInvalidProfileName
	}
	for _, character := range name {
		if unicode.IsLetter(character) || unicode.IsDigit(character) || character == '_' || character == '-' {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidProfileName, name)
	}
	return nil
}

// Save writes record under its name, replacing any existing profile.
func (store *ProfileStore) Save(record ProfileRecord) (string, error) {
	name := strings.TrimSpace(record.Name)
	if err := ValidateProfileName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(store.directory, 0o755); err != nil {
		return "", fmt.Errorf("create profile directory %s: %w", store.directory, err)
	}

	writer := viper.New()
	writer.SetConfigType(profileConfigType)
	writer.Set(profileKeyInstructions, record.Instructions)
	writer.Set(profileKeyCustomIgnores, record.CustomIgnores)
	writer.Set(profileKeyProjectFolder, record.ProjectFolder)
	writer.Set(profileKeyMainFiles, record.MainFiles)

	destinationPath := store.profilePath(name)
	if err := writer.WriteConfigAs(destinationPath); err != nil {
		return "", fmt.Errorf("write profile %s: %w", destinationPath, err)
	}
	return destinationPath, nil
}

// Load reads the named profile.
func (store *ProfileStore) Load(name string) (ProfileRecord, error) {
	trimmedName := strings.TrimSpace(name)
	if err := ValidateProfileName(trimmedName); err != nil {
		return ProfileRecord{}, err
	}
	sourcePath := store.profilePath(trimmedName)
	info, statErr := os.Stat(sourcePath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ProfileRecord{}, fmt.Errorf("%w: %s", ErrProfileNotFound, trimmedName)
		}
		return ProfileRecord{}, fmt.Errorf("stat profile %s: %w", sourcePath, statErr)
	}
	if !info.Mode().IsRegular() {
		return ProfileRecord{}, fmt.Errorf("%w: %s", ErrProfileNotFound, trimmedName)
	}

	reader := viper.New()
	reader.SetConfigFile(sourcePath)
	reader.SetConfigType(profileConfigType)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ProfileRecord{}, fmt.Errorf("read profile %s: %w", sourcePath, readErr)
	}
	var record ProfileRecord
	if decodeErr := reader.Unmarshal(&record); decodeErr != nil {
		return ProfileRecord{}, fmt.Errorf("decode profile %s: %w", sourcePath, decodeErr)
	}
	record.Name = trimmedName
	return record, nil
}

// List returns saved profile names in ascending order. A missing directory lists nothing.
func (store *ProfileStore) List() ([]string, error) {
	entries, readErr := os.ReadDir(store.directory)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("list profiles in %s: %w", store.directory, readErr)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != profileFileExtension {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), profileFileExtension))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named profile. Deleting a missing profile is not an error.
func (store *ProfileStore) Delete(name string) error {
	trimmedName := strings.TrimSpace(name)
	if err := ValidateProfileName(trimmedName); err != nil {
		return err
	}
	if err := os.Remove(store.profilePath(trimmedName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete profile %s: %w", trimmedName, err)
	}
	return nil
}

func (store *ProfileStore) profilePath(name string) string {
	return filepath.Join(store.directory, name+profileFileExtension)
}
