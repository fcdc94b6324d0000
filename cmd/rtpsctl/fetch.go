package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/runconduit/rtps-discovery/pkg/proxy"
)

func fetchProxies(baseURL string) ([]proxy.ParticipantProxy, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/debug/proxies")
	if err != nil {
		return nil, fmt.Errorf("rtpsctl: contacting %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rtpsctl: %s returned %s", baseURL, resp.Status)
	}

	var participants []proxy.ParticipantProxy
	if err := json.NewDecoder(resp.Body).Decode(&participants); err != nil {
		return nil, fmt.Errorf("rtpsctl: decoding response from %s: %w", baseURL, err)
	}
	return participants, nil
}
