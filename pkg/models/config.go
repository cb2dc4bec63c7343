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

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/whodis/pkg/logger"
)

var errInvalidDuration = errors.New("invalid duration")

// Duration wraps time.Duration so JSON configs can say "30m" or plain
// nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// RedisConfig locates the backing Redis instance. SocketPath wins over Addr
// when both are set.
type RedisConfig struct {
	Addr       string `json:"addr"`
	SocketPath string `json:"socket_path,omitempty"`
	Password   string `json:"password,omitempty"`
	DB         int    `json:"db,omitempty"`
}

// ScanConfig configures the external arp-scan invocation.
type ScanConfig struct {
	Interface string   `json:"interface"`
	BinPath   string   `json:"bin_path,omitempty"`
	ExtraArgs []string `json:"extra_args,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
}

const (
	defaultListenAddr   = ":8090"
	defaultRedisAddr    = "localhost:6379"
	defaultScanInterval = 30 * time.Minute
)

// DaemonConfig is the whodisd top-level configuration.
type DaemonConfig struct {
	ListenAddr   string         `json:"listen_addr"`
	Redis        RedisConfig    `json:"redis"`
	Scan         ScanConfig     `json:"scan"`
	ScanInterval Duration       `json:"scan_interval"`
	SnapshotPath string         `json:"snapshot_path,omitempty"`
	Logging      *logger.Config `json:"logging,omitempty"`
}

var errScanInterfaceRequired = errors.New("scan.interface is required")

// Validate applies defaults and rejects unusable configuration.
func (c *DaemonConfig) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.Redis.Addr == "" && c.Redis.SocketPath == "" {
		c.Redis.Addr = defaultRedisAddr
	}

	if c.ScanInterval <= 0 {
		c.ScanInterval = Duration(defaultScanInterval)
	}

	if c.Scan.Interface == "" {
		return errScanInterfaceRequired
	}

	return nil
}
