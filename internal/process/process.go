package process

import (
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

// Lister returns the running processes.
type Lister func() ([]ps.Process, error)

// Detector checks whether a named executable is running.
type Detector struct {
	list Lister
}

// NewDetector creates a Detector backed by the operating system process table.
func NewDetector() *Detector {
	return &Detector{list: ps.Processes}
}

// NewDetectorWithLister creates a Detector backed by a custom process source.
func NewDetectorWithLister(list Lister) *Detector {
	return &Detector{list: list}
}

// IsRunning reports whether a process other than the current one has the
// executable name. Names are compared case-insensitively, as on Windows.
func (d *Detector) IsRunning(executable string) (bool, error) {
	if executable == "" {
		return false, nil
	}

	processList, err := d.list()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if strings.EqualFold(process.Executable(), executable) {
			return true, nil
		}
	}

	return false, nil
}
