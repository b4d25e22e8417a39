package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"TrendSentinel/internal/model"
)

// LoadState reads the run state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*model.RunState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.RunState{}, nil
		}
		return nil, err
	}
	var state model.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the run state to a JSON file.
func SaveState(filePath string, state *model.RunState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
