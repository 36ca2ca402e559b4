package extract

import (
	"fmt"

	"github.com/spf13/viper"
)

// TagFilter is an include-list over tags: a record is accepted when any of
// its tags appears in the filter with a matching value. An empty value
// list accepts every value of that key.
type TagFilter map[string][]string

// Match reports whether the record tags satisfy the filter. A nil or
// empty filter accepts everything.
func (tf TagFilter) Match(tags map[string]string) bool {
	if len(tf) == 0 {
		return true
	}
	for key, accepted := range tf {
		v, ok := tags[key]
		if !ok {
			continue
		}
		if len(accepted) == 0 {
			return true
		}
		for _, want := range accepted {
			if v == want {
				return true
			}
		}
	}
	return false
}

// FilterConfig holds the include-lists for ways and areas.
type FilterConfig struct {
	Ways  TagFilter
	Areas TagFilter
}

// DefaultFilterConfig accepts the water-boundary tags the pipeline is
// built around.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Ways: TagFilter{
			"natural":  {"coastline"},
			"waterway": {"river", "canal"},
		},
		Areas: TagFilter{
			"natural": {"water", "coastline"},
		},
	}
}

// LoadFilterConfig reads a filter config file. The file maps "ways" and
// "areas" to tag include-lists:
//
//	ways:
//	  natural: [coastline]
//	  waterway: [river, canal]
//	areas:
//	  natural: [water]
//
// Keys absent from the file fall back to the defaults.
func LoadFilterConfig(path string) (FilterConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return FilterConfig{}, fmt.Errorf("reading filter config %s: %w", path, err)
	}

	cfg := DefaultFilterConfig()
	if v.IsSet("ways") {
		cfg.Ways = TagFilter(v.GetStringMapStringSlice("ways"))
	}
	if v.IsSet("areas") {
		cfg.Areas = TagFilter(v.GetStringMapStringSlice("areas"))
	}
	return cfg, nil
}
