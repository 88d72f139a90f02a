package toolchain

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/odcscan/odcscan/internal/scanner"
)

// ToolStatus is the PATH resolution of one configured executable.
type ToolStatus struct {
	Role    string
	Name    string
	Path    string
	Found   bool
	Error   string
	UsedFor string
}

// Detect resolves each configured tool without running it.
func Detect(tools scanner.Tools) []ToolStatus {
	return []ToolStatus{
		lookup("maven", tools.Maven, "pom.xml projects"),
		lookup("dependency-check", tools.DependencyCheck, "package.json projects"),
	}
}

func lookup(role, name, usedFor string) ToolStatus {
	status := ToolStatus{Role: role, Name: name, UsedFor: usedFor}
	path, err := exec.LookPath(name)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Path = path
	status.Found = true
	return status
}

type HostInfo struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Arch            string
}

func (h HostInfo) String() string {
	if h.Platform == "" {
		return fmt.Sprintf("%s/%s", h.OS, h.Arch)
	}
	return fmt.Sprintf("%s %s (%s/%s, kernel %s)", h.Platform, h.PlatformVersion, h.OS, h.Arch, h.KernelVersion)
}

// GetHostInfo falls back to the Go runtime's view when the host cannot be
// inspected.
func GetHostInfo() (HostInfo, error) {
	info := HostInfo{OS: runtime.GOOS, Arch: runtime.GOARCH}

	stat, err := host.Info()
	if err != nil {
		return info, fmt.Errorf("failed to read host info: %w", err)
	}

	info.Hostname = stat.Hostname
	info.Platform = stat.Platform
	info.PlatformVersion = stat.PlatformVersion
	info.KernelVersion = stat.KernelVersion
	if stat.OS != "" {
		info.OS = stat.OS
	}
	if stat.KernelArch != "" {
		info.Arch = stat.KernelArch
	}
	return info, nil
}
