package commands

import (
	"fmt"
	"strings"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// ParseSource maps a -source flag value to its enum, case-insensitively.
func ParseSource(s string) (log.Source, error) {
	switch strings.ToLower(s) {
	case "rest":
		return log.SourceREST, nil
	case "discovery":
		return log.SourceDiscovery, nil
	case "monitor":
		return log.SourceMonitor, nil
	case "device":
		return log.SourceDevice, nil
	}
	return 0, fmt.Errorf("invalid source %q (want rest, discovery, monitor, or device)", s)
}

// ParseDirection maps a -direction flag value to its enum, case-insensitively.
func ParseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	case "local":
		return log.DirectionLocal, nil
	}
	return 0, fmt.Errorf("invalid direction %q (want in, out, or local)", s)
}

// ParseCategory maps a -category flag value to its enum, case-insensitively.
func ParseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "exchange":
		return log.CategoryExchange, nil
	case "announce":
		return log.CategoryAnnounce, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	}
	return 0, fmt.Errorf("invalid category %q (want exchange, announce, state, or error)", s)
}
