package handlers

import (
	"encoding/json"
	"sort"
)

var profileFields = map[string]bool{
	"name":        true,
	"email":       true,
	"phoneNumber": true,
	"address":     true,
	"country":     true,
	"city":        true,
	"pinCode":     true,
}

func unknownProfileFields(raw map[string]any) []string {
	var invalid []string
	for k := range raw {
		if !profileFields[k] {
			invalid = append(invalid, k)
		}
	}
	sort.Strings(invalid)
	return invalid
}

func decodeInto(raw map[string]any, dst any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
