// Package system samples host resource usage for the health report.
package system

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Usage is a point-in-time view of host load.
type Usage struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
}

// GetCPUUsage returns the current CPU usage as a percentage
func GetCPUUsage() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("could not get CPU usage")
	}
	return percentages[0], nil
}

// GetMemoryUsage returns the current memory usage as a percentage
func GetMemoryUsage() (float64, error) {
	virtualMem, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return virtualMem.UsedPercent, nil
}

// Sample reads CPU and memory usage. Values that cannot be read are left at zero
// and the first error is returned alongside.
func Sample() (Usage, error) {
	var u Usage
	cpuPct, cpuErr := GetCPUUsage()
	if cpuErr == nil {
		u.CPUPercent = cpuPct
	}
	memPct, memErr := GetMemoryUsage()
	if memErr == nil {
		u.MemoryPercent = memPct
	}
	if cpuErr != nil {
		return u, fmt.Errorf("could not read cpu usage: %w", cpuErr)
	}
	if memErr != nil {
		return u, fmt.Errorf("could not read memory usage: %w", memErr)
	}
	return u, nil
}
