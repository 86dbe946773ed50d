package system

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// InitResourceLimits raises the open-file limit; copying pages in parallel
// keeps several source and destination files open per worker.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		slog.Warn("could not read open-file limit", "err", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		slog.Warn("could not raise open-file limit", "err", err)
		return
	}
	slog.Debug("open-file limit raised", "limit", rLimit.Cur)
}

// DefaultWorkers is the number of logical CPUs.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

type MemoryStats struct {
	TotalMB     uint64
	UsedPercent float64
	ProcessRSS  uint64 // bytes
}

func (m MemoryStats) String() string {
	return fmt.Sprintf("system %d MB (%.1f%% used), process RSS %.1f MB",
		m.TotalMB, m.UsedPercent, float64(m.ProcessRSS)/(1<<20))
}

// ReadMemoryStats reports system memory and the resident size of this process.
func ReadMemoryStats() (MemoryStats, error) {
	var stats MemoryStats

	vm, err := mem.VirtualMemory()
	if err != nil {
		return stats, fmt.Errorf("virtual memory: %w", err)
	}
	stats.TotalMB = vm.Total / (1 << 20)
	stats.UsedPercent = vm.UsedPercent

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats, fmt.Errorf("process: %w", err)
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return stats, fmt.Errorf("process memory: %w", err)
	}
	stats.ProcessRSS = info.RSS
	return stats, nil
}

// FindLatest returns the most recently modified file in dir with one of the
// given extensions.
func FindLatest(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files in %s", strings.Join(extensions, "/"), dir)
	}
	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
