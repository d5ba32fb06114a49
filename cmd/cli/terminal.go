package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/viper"
)

func atmURL() string {
	if url := viper.GetString("atm_url"); url != "" {
		return url
	}
	return "http://localhost:8086"
}

// terminalID returns the terminal this CLI operates, creating one on the
// first use and remembering it in the config file.
func terminalID() (string, error) {
	if id := viper.GetString("terminal_id"); id != "" {
		return id, nil
	}

	resp, err := http.Post(atmURL()+"/terminals", "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("error connecting to ATM service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("terminal creation failed with status %s", resp.Status)
	}

	var out struct {
		TerminalID string `json:"terminal_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	viper.Set("terminal_id", out.TerminalID)
	if err := viper.WriteConfig(); err != nil {
		fmt.Printf("Warning: failed to write config: %v\n", err)
	}
	fmt.Printf("Created terminal %s\n", out.TerminalID)
	return out.TerminalID, nil
}

// post sends a terminal operation and decodes the response body.
func post(path string, payload any) (map[string]json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(atmURL()+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error connecting to ATM service: %w", err)
	}
	defer resp.Body.Close()

	var out map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg, ok := out["error"]; ok {
			return nil, fmt.Errorf("%s", bytes.Trim(msg, `"`))
		}
		return nil, fmt.Errorf("request failed with status %s", resp.Status)
	}
	return out, nil
}
