package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/temirov/promptgen/internal/utils"
)

const (
	// NoMainFilesSentinel replaces the file blocks when no main files are selected.
	NoMainFilesSentinel = "(No main files added to the list.)"

	fileHeaderFormat = "--- File: %s ---"
	fileFooter       = "--- End File ---"

	// DefaultContentCacheSize bounds the number of decoded files kept in memory.
	DefaultContentCacheSize = 256

	errorCreateCacheFormat = "create content cache: %w"
)

type cachedContent struct {
	size         int64
	modification time.Time
	text         string
}

// FileAggregator reads main files and formats them as delimited blocks. Decoded content
// is cached per path and reused while size and modification time are unchanged.
// It is safe for concurrent use.
type FileAggregator struct {
	cache  *lru.Cache[string, cachedContent]
	logger *zap.Logger
}

// NewFileAggregator constructs an aggregator with a cache of cacheSize entries.
// A non-positive size selects DefaultContentCacheSize.
func NewFileAggregator(cacheSize int, logger *zap.Logger) (*FileAggregator, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultContentCacheSize
	}
	cache, cacheError := lru.New[string, cachedContent](cacheSize)
	if cacheError != nil {
		return nil, fmt.Errorf(errorCreateCacheFormat, cacheError)
	}
	return &FileAggregator{cache: cache, logger: utils.LoggerOrNop(logger)}, nil
}

// ReadFileContent is the cached form of the package-level ReadFileContent.
func (aggregator *FileAggregator) ReadFileContent(path string) string {
	fileInformation, statError := os.Stat(path)
	if statError != nil {
		aggregator.cache.Remove(path)
		aggregator.logger.Warn("unable to read main file", zap.String("path", path), zap.Error(statError))
		return readErrorPlaceholder(path, statError)
	}
	if fileInformation.Size() > MaxFileSizeBytes {
		aggregator.cache.Remove(path)
		return tooLargePlaceholder(path)
	}
	if cached, found := aggregator.cache.Get(path); found &&
		cached.size == fileInformation.Size() && cached.modification.Equal(fileInformation.ModTime()) {
		return cached.text
	}
	text := readAndDecode(path)
	aggregator.cache.Add(path, cachedContent{
		size:         fileInformation.Size(),
		modification: fileInformation.ModTime(),
		text:         text,
	})
	return text
}

// Aggregate formats each path, in order, as a header, its trimmed content and a footer.
// Display paths are relative to projectRoot when contained in it.
func (aggregator *FileAggregator) Aggregate(paths []string, projectRoot string) string {
	if len(paths) == 0 {
		return NoMainFilesSentinel
	}
	blocks := make([]string, 0, len(paths)*3)
	for _, path := range paths {
		blocks = append(blocks,
			fmt.Sprintf(fileHeaderFormat, utils.DisplayPath(path, projectRoot)),
			strings.TrimSpace(aggregator.ReadFileContent(path)),
			fileFooter,
		)
	}
	return strings.Join(blocks, "\n")
}
