package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a rules file and compiles it. The file holds either a single
// rule object or an array of rules; both decode to a compiled set. Decode
// and validation failures both abort the run before any message is touched.
func Load(path string) ([]CompiledRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	ruleSet, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Compile(ruleSet)
}

// Decode parses rules JSON without compiling it. The document shape is
// sniffed from the first non-space byte so a malformed array reports an array
// error instead of a confusing object-fallback one.
func Decode(raw []byte) ([]Rule, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single Rule
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("decode rule object: %w", err)
		}
		return []Rule{single}, nil
	}
	var ruleSet []Rule
	if err := json.Unmarshal(raw, &ruleSet); err != nil {
		return nil, fmt.Errorf("decode rules array: %w", err)
	}
	return ruleSet, nil
}
