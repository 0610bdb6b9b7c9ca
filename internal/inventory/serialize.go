package inventory

import (
	"fmt"

	"github.com/elliotchance/phpserialize"

	"github.com/ben-ranford/d7audit/internal/report"
)

const unknownValue = "Unknown"

// UnserializeString decodes a PHP-serialized string such as a variable
// value. Values that are not a serialized string are returned unchanged.
func UnserializeString(value string) string {
	if value == "" {
		return ""
	}
	decoded, err := phpserialize.UnmarshalString([]byte(value))
	if err != nil {
		return value
	}
	return decoded
}

// UnserializeInfo decodes the serialized info array stored per module in
// the system table. Nested arrays are kept as decoded.
func UnserializeInfo(value string) (map[string]any, error) {
	decoded, err := phpserialize.UnmarshalAssociativeArray([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("unserialize module info: %w", err)
	}
	info := make(map[string]any, len(decoded))
	for key, item := range decoded {
		info[fmt.Sprint(key)] = item
	}
	return info, nil
}

func contribModule(machine, serializedInfo string) report.ContribModule {
	module := report.ContribModule{
		Machine: machine,
		Name:    machine,
		Version: unknownValue,
		Project: unknownValue,
	}
	info, err := UnserializeInfo(serializedInfo)
	if err != nil {
		return module
	}
	if name := infoString(info, "name"); name != "" {
		module.Name = name
	}
	if version := infoString(info, "version"); version != "" {
		module.Version = version
	}
	if project := infoString(info, "project"); project != "" {
		module.Project = project
	}
	return module
}

func infoString(info map[string]any, key string) string {
	value, ok := info[key]
	if !ok || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprint(value)
}
