package daemon

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openmirror/mirrorbox/internal/utils"
)

const (
	DefaultLogFile  = "sync_log.txt"
	DefaultInterval = 30 * time.Second
)

type Config struct {
	Source      string
	Replica     string
	LogFile     string
	Interval    time.Duration
	Detach      bool
	Watch       bool
	Once        bool
	ExcludeFile string
}

// Validate resolves paths and checks the fatal preconditions. A missing
// source root means there is nothing to mirror and the process must not start;
// a missing replica root is fine, the first pass creates it.
func (c *Config) Validate() error {
	if c.Source == "" {
		return errors.New("source path is required")
	}
	if c.Replica == "" {
		return errors.New("replica path is required")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", c.Interval)
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}

	source, err := utils.ResolvePath(c.Source)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	replica, err := utils.ResolvePath(c.Replica)
	if err != nil {
		return fmt.Errorf("resolve replica: %w", err)
	}
	c.Source, c.Replica = source, replica

	if !utils.DirExists(c.Source) {
		return fmt.Errorf("source root does not exist: %s", c.Source)
	}

	// A replica inside the source (or vice versa) would mirror itself into
	// itself. Refuse up front.
	if c.Source == c.Replica {
		return errors.New("source and replica must be different directories")
	}
	if isSubPath(c.Source, c.Replica) || isSubPath(c.Replica, c.Source) {
		return errors.New("source and replica must not be nested inside each other")
	}

	return nil
}

func isSubPath(parent, child string) bool {
	return strings.HasPrefix(child, parent+"/")
}
