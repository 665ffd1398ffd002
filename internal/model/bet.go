package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// BetSize is a bet in big blinds. Range files may write it as a number or as
// a string such as "2.5" or "2.5bb"; values that do not parse read as zero.
type BetSize float64

// UnmarshalJSON accepts numbers, numeric strings and null.
func (b *BetSize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = parseBetSize(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*b = 0
		return nil
	}
	*b = BetSize(f)
	return nil
}

// UnmarshalYAML accepts any scalar.
func (b *BetSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		*b = 0
		return nil
	}
	*b = parseBetSize(value.Value)
	return nil
}

func parseBetSize(s string) BetSize {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, "bb"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return BetSize(f)
}
