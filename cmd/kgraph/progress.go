// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/kgraph/pkg/ingestion"
)

// ProgressConfig determines if and how progress should be displayed.
type ProgressConfig struct {
	// Enabled is false under --json or -q, and when the writer is not a terminal.
	Enabled bool

	Writer  io.Writer
	NoColor bool
}

// NewProgressConfig enables progress only when w is a terminal.
func NewProgressConfig(globals GlobalFlags, w io.Writer) ProgressConfig {
	return ProgressConfig{
		Enabled: !globals.Quiet && isTerminal(w),
		Writer:  w,
		NoColor: globals.NoColor,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// NewProgressBar returns a byte-counting bar, or nil when progress is disabled.
func NewProgressBar(cfg ProgressConfig, total int64, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}

	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// NewSpinner returns an indeterminate spinner, or nil when progress is disabled.
func NewSpinner(cfg ProgressConfig, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}

	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
	)
}

// loadProgress draws one byte bar per source file from loader progress events.
type loadProgress struct {
	cfg  ProgressConfig
	bar  *progressbar.ProgressBar
	path string
}

func newLoadProgress(cfg ProgressConfig) *loadProgress {
	return &loadProgress{cfg: cfg}
}

// Hook is installed as Loader.OnProgress.
func (p *loadProgress) Hook(ev ingestion.Progress) {
	if !p.cfg.Enabled {
		return
	}
	if ev.Path != p.path {
		p.Finish()
		p.path = ev.Path
		var size int64 = -1
		if info, err := os.Stat(ev.Path); err == nil {
			size = info.Size()
		}
		p.bar = NewProgressBar(p.cfg, size, "Loading "+filepath.Base(ev.Path))
	}
	if p.bar != nil {
		_ = p.bar.Set64(ev.BytesRead)
	}
}

// Finish clears the current bar. Safe to call when no bar is shown.
func (p *loadProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// stopSpinner finishes s if it is non-nil.
func stopSpinner(s *progressbar.ProgressBar) {
	if s != nil {
		_ = s.Finish()
	}
}
