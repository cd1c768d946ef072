package moderation

import (
	"fmt"
	"os"
	"sayit/errors"

	"gopkg.in/yaml.v3"
)

type wordList struct {
	Words []string `yaml:"words"`
}

// LoadWords reads a YAML word list of the form:
//
//	words:
//	  - first
//	  - second
func LoadWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}

	var list wordList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse word list %s: %w", path, err)
	}
	if len(list.Words) == 0 {
		return nil, fmt.Errorf("word list %s: %w", path, errors.ErrEmptyWords)
	}
	return list.Words, nil
}
