/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package scan wraps the external arp-scan binary as a device scanner. The
// discovery mechanism itself stays outside this system; only the tabular
// output contract is ours.
package scan

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

const (
	defaultBinPath = "arp-scan"
	defaultTimeout = 60 * time.Second
)

// ArpScanner shells out to arp-scan and parses its tab-separated output.
type ArpScanner struct {
	iface   string
	binPath string
	args    []string
	timeout time.Duration
	logger  logger.Logger
}

func NewArpScanner(cfg *models.ScanConfig, log logger.Logger) *ArpScanner {
	binPath := cfg.BinPath
	if binPath == "" {
		binPath = defaultBinPath
	}

	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	args := cfg.ExtraArgs
	if len(args) == 0 {
		args = []string{"--localnet"}
	}

	return &ArpScanner{
		iface:   cfg.Interface,
		binPath: binPath,
		args:    args,
		timeout: timeout,
		logger:  log,
	}
}

// Scan runs one arp-scan sweep. Blocks for up to the configured timeout.
func (s *ArpScanner) Scan(ctx context.Context) ([]models.ScanResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := append([]string{"--interface=" + s.iface}, s.args...)

	out, err := exec.CommandContext(ctx, s.binPath, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("arp-scan on %s: %w", s.iface, err)
	}

	results := parseOutput(string(out))

	s.logger.Debug().
		Str("interface", s.iface).
		Int("results", len(results)).
		Msg("arp-scan completed")

	return results, nil
}

// parseOutput extracts sightings from arp-scan's stdout. Data lines are
// "<ip>\t<mac>\t<vendor>"; header and summary lines carry no tabs and are
// skipped, as is anything whose first column is not an IP address.
func parseOutput(out string) []models.ScanResult {
	var results []models.ScanResult

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}

		ip := strings.TrimSpace(fields[0])
		if net.ParseIP(ip) == nil {
			continue
		}

		mac := strings.TrimSpace(fields[1])
		if mac == "" {
			continue
		}

		vendor := "(Unknown)"
		if len(fields) >= 3 && strings.TrimSpace(fields[2]) != "" {
			vendor = strings.TrimSpace(strings.Join(fields[2:], " "))
		}

		results = append(results, models.ScanResult{MAC: mac, IP: ip, Vendor: vendor})
	}

	return results
}
