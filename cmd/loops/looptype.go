package main

import "fmt"

// LoopType names a loop of the daemon. One process runs one loop.
type LoopType string

const (
	// lifecycle loops for runs
	InitializeLoop    LoopType = "initialize"
	RunManagementLoop LoopType = "run_management"
	FinishingLoop     LoopType = "finishing"

	// merging chromosome CSVs into feature tables
	AggregateLoop LoopType = "aggregate"

	// driving the hosted clustering service
	ClusteringLoop LoopType = "clustering"

	// removing files of deleted cohorts
	HousekeepingLoop LoopType = "housekeeping"
)

func (lt LoopType) String() string {
	return string(lt)
}

func AsLoopType(s string) (LoopType, error) {
	switch LoopType(s) {
	case InitializeLoop:
		return InitializeLoop, nil
	case RunManagementLoop:
		return RunManagementLoop, nil
	case FinishingLoop:
		return FinishingLoop, nil
	case AggregateLoop:
		return AggregateLoop, nil
	case ClusteringLoop:
		return ClusteringLoop, nil
	case HousekeepingLoop:
		return HousekeepingLoop, nil
	default:
		return "", fmt.Errorf(
			"unknown loop type: %s (should be one of -- initialize|run_management|finishing|aggregate|clustering|housekeeping)",
			s,
		)
	}
}
