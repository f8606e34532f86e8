// SPDX-License-Identifier: Apache-2.0
/*
Copyright (C) 2024 The Falco Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// AgentCgroupMemPathEnvVar overrides the cgroup file the sampler
	// reads the containerized agent's memory usage from.
	AgentCgroupMemPathEnvVar = "AGENT_CGROUP_MEM_PATH"

	defaultCgroupMemPath = "/sys/fs/cgroup/memory/memory.usage_in_bytes"

	// Kernel clock tick rate assumed when converting /proc/<pid>/stat
	// cpu times to seconds.
	userHz = 100
)

// ResourceUtilizationSampler reads the agent's and the host's resource
// counters out of procfs. Every read is best effort: a file that
// cannot be opened or parsed leaves its counters at zero, the sampler
// never fails as a whole.
//
// hostRoot is prepended to host-wide paths so the sampler works from
// inside a container with the host's /proc bind-mounted elsewhere.
type ResourceUtilizationSampler struct {
	hostRoot string
	procSelf string

	// agent start, in seconds since host boot
	startTime float64

	cpuPerc          float64
	vszKB            uint32
	rssKB            uint32
	pssKB            uint32
	containerMemB    uint64
	hostCPUPerc      float64
	hostMemUsedKB    uint32
	hostProcsRunning uint32
	hostOpenFDs      uint64
}

// NewResourceUtilizationSampler builds a sampler rooted at hostRoot.
// startTime is the agent's start instant in seconds since host boot
// and anchors the process cpu usage percentage.
func NewResourceUtilizationSampler(hostRoot string, startTime float64) *ResourceUtilizationSampler {
	return &ResourceUtilizationSampler{
		hostRoot:  hostRoot,
		procSelf:  "/proc/self",
		startTime: startTime,
	}
}

// Sample refreshes every counter from procfs.
func (s *ResourceUtilizationSampler) Sample() {
	s.sampleSelfMemory()
	s.sampleHostMemoryAndFDs()
	s.sampleCPUAndProcs()
	s.sampleContainerMemory()
}

// Metrics returns the last sampled counters as finished metrics.
func (s *ResourceUtilizationSampler) Metrics() []Metric {
	return []Metric{
		NewDouble("cpu_usage_perc", ResourceUtilization, UnitPerc, NonMonotonicCurrent, s.cpuPerc),
		NewU32("memory_rss_kb", ResourceUtilization, UnitMemoryKibibytes, NonMonotonicCurrent, s.rssKB),
		NewU32("memory_vsz_kb", ResourceUtilization, UnitMemoryKibibytes, NonMonotonicCurrent, s.vszKB),
		NewU32("memory_pss_kb", ResourceUtilization, UnitMemoryKibibytes, NonMonotonicCurrent, s.pssKB),
		NewU64("container_memory_used_bytes", ResourceUtilization, UnitMemoryBytes, NonMonotonicCurrent, s.containerMemB),
		NewDouble("host_cpu_usage_perc", ResourceUtilization, UnitPerc, NonMonotonicCurrent, s.hostCPUPerc),
		NewU32("host_memory_used_kb", ResourceUtilization, UnitMemoryKibibytes, NonMonotonicCurrent, s.hostMemUsedKB),
		NewU32("host_procs_running", ResourceUtilization, UnitCount, NonMonotonicCurrent, s.hostProcsRunning),
		NewU64("host_open_fds", ResourceUtilization, UnitCount, NonMonotonicCurrent, s.hostOpenFDs),
	}
}

func (s *ResourceUtilizationSampler) sampleSelfMemory() {
	scanFile(filepath.Join(s.procSelf, "status"), func(line string) bool {
		var v uint32
		if _, err := fmt.Sscanf(line, "VmSize: %d", &v); err == nil {
			s.vszKB = v
		}
		if _, err := fmt.Sscanf(line, "VmRSS: %d", &v); err == nil {
			s.rssKB = v
			return false
		}
		return true
	})
	scanFile(filepath.Join(s.procSelf, "smaps_rollup"), func(line string) bool {
		var v uint32
		if _, err := fmt.Sscanf(line, "Pss: %d", &v); err == nil {
			s.pssKB = v
			return false
		}
		return true
	})
}

func (s *ResourceUtilizationSampler) sampleHostMemoryAndFDs() {
	var total, free, buffers, cached uint64
	scanFile(filepath.Join(s.hostRoot, "proc/meminfo"), func(line string) bool {
		fmt.Sscanf(line, "MemTotal: %d", &total)
		fmt.Sscanf(line, "MemFree: %d", &free)
		fmt.Sscanf(line, "Buffers: %d", &buffers)
		_, err := fmt.Sscanf(line, "Cached: %d", &cached)
		return err != nil
	})
	if used := total - free - buffers - cached; total > 0 && used <= total {
		s.hostMemUsedKB = uint32(used)
	}
	scanFile(filepath.Join(s.hostRoot, "proc/sys/fs/file-nr"), func(line string) bool {
		fmt.Sscanf(line, "%d", &s.hostOpenFDs)
		return false
	})
}

func (s *ResourceUtilizationSampler) sampleCPUAndProcs() {
	var uptime float64
	scanFile(filepath.Join(s.hostRoot, "proc/uptime"), func(line string) bool {
		fmt.Sscanf(line, "%f", &uptime)
		return false
	})

	// cpu times live after the comm field, which may itself contain
	// spaces and parentheses
	scanFile(filepath.Join(s.procSelf, "stat"), func(line string) bool {
		i := strings.LastIndexByte(line, ')')
		if i < 0 {
			return false
		}
		fields := strings.Fields(line[i+1:])
		if len(fields) < 13 {
			return false
		}
		utime, _ := strconv.ParseUint(fields[11], 10, 64)
		stime, _ := strconv.ParseUint(fields[12], 10, 64)
		if elapsed := uptime - s.startTime; elapsed > 0 {
			cpu := float64(utime+stime) / userHz / elapsed * 100.0
			s.cpuPerc = math.Round(cpu*10) / 10
		}
		return false
	})

	scanFile(filepath.Join(s.hostRoot, "proc/stat"), func(line string) bool {
		if strings.HasPrefix(line, "cpu ") {
			var user, nice, system, idle, iowait, irq, softirq uint64
			n, _ := fmt.Sscanf(line, "cpu %d %d %d %d %d %d %d",
				&user, &nice, &system, &idle, &iowait, &irq, &softirq)
			sum := user + nice + system + idle + iowait + irq + softirq
			if n == 7 && sum > 0 {
				cpu := 100.0 - float64(idle)*100.0/float64(sum)
				s.hostCPUPerc = math.Round(cpu*10) / 10
			}
			return true
		}
		var running uint32
		if _, err := fmt.Sscanf(line, "procs_running %d", &running); err == nil {
			s.hostProcsRunning = running
			return false
		}
		return true
	})
}

func (s *ResourceUtilizationSampler) sampleContainerMemory() {
	path := os.Getenv(AgentCgroupMemPathEnvVar)
	if path == "" {
		path = defaultCgroupMemPath
	}
	scanFile(path, func(line string) bool {
		fmt.Sscanf(line, "%d", &s.containerMemB)
		return false
	})
}

// scanFile feeds each line of path to fn until fn returns false. A
// missing or unreadable file is silently skipped.
func scanFile(path string, fn func(line string) bool) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if !fn(sc.Text()) {
			return
		}
	}
}
