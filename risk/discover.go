package risk

import (
	"embed"
	"fmt"
	"io"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

//go:embed resources/*.toml
var resources embed.FS

// CategoryList List of all categories in registration order
var CategoryList = []CategoryInfo{}

// CategoryMap Map of categories keyed on their short name
var CategoryMap = make(map[string]*CategoryInfo)

// CategoryInfo metadata about a category scorer
type CategoryInfo struct {
	Name        string          `toml:"name" json:"name"`
	Key         string          `toml:"key" json:"key"`
	Description string          `toml:"description" json:"description"`
	Input       string          `toml:"input" json:"input"`
	Factory     CategoryFactory `toml:"-" json:"-"`
}

var registerOnce sync.Once

// InitializeCategoryMap configure the category map. Safe to call from
// concurrent scorers; registration happens exactly once.
func InitializeCategoryMap() {
	registerOnce.Do(func() {
		Register("funding", newFunding)
		Register("execution", newExecution)
		Register("commodity", newCommodity)
		Register("control", newControl)
		Register("timing", newTiming)
	})
}

func Register(key string, factory CategoryFactory) {
	fn := fmt.Sprintf("resources/%s.toml", key)
	file, err := resources.Open(fn)
	if err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to open category resource")
		return
	}
	defer file.Close()

	doc, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to read category resource")
		return
	}

	var info CategoryInfo
	if err := toml.Unmarshal(doc, &info); err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to parse category resource")
		return
	}

	info.Factory = factory

	CategoryList = append(CategoryList, info)
	CategoryMap[info.Key] = &info
}
