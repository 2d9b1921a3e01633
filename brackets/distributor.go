package brackets

import (
	"fmt"
	"sort"
)

// DistributeTeams partitions teamIDs into balanced groups numbered from 1.
// The effective group count is min(len(teamIDs), numberOfGroups), so a group
// is never left empty. Without an opening pair, teams are dealt round-robin
// over the (caller pre-shuffled) list, which bounds the size difference
// between any two groups at 1. With an opening pair, both opening teams are
// placed in group 1 and every remaining team goes to the currently smallest
// group, ties broken by ascending group number.
func DistributeTeams(teamIDs []int, numberOfGroups int, openingA, openingB *int) (map[int][]int, error) {
	if len(teamIDs) == 0 {
		return nil, ErrEmptyTeamList
	}
	if numberOfGroups < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGroupCount, numberOfGroups)
	}

	seen := make(map[int]bool, len(teamIDs))
	for _, id := range teamIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: team %d", ErrDuplicateTeamIDs, id)
		}
		seen[id] = true
	}

	hasOpeningPair := openingA != nil && openingB != nil
	if hasOpeningPair {
		if *openingA == *openingB {
			return nil, fmt.Errorf("%w: team %d given twice", ErrInvalidOpeningPair, *openingA)
		}
		if !seen[*openingA] || !seen[*openingB] {
			return nil, fmt.Errorf("%w: teams %d and %d", ErrInvalidOpeningPair, *openingA, *openingB)
		}
	}

	groupCount := numberOfGroups
	if groupCount > len(teamIDs) {
		groupCount = len(teamIDs)
	}
	// Two co-located opening teams occupy a single group, so at most N-1
	// groups can be kept non-empty.
	if hasOpeningPair && groupCount > len(teamIDs)-1 {
		groupCount = len(teamIDs) - 1
	}
	if groupCount < 1 {
		groupCount = 1
	}

	distribution := make(map[int][]int, groupCount)
	for g := 1; g <= groupCount; g++ {
		distribution[g] = []int{}
	}

	if !hasOpeningPair {
		for i, id := range teamIDs {
			g := i%groupCount + 1
			distribution[g] = append(distribution[g], id)
		}
		return distribution, nil
	}

	distribution[1] = append(distribution[1], *openingA, *openingB)
	for _, id := range teamIDs {
		if id == *openingA || id == *openingB {
			continue
		}
		target := 1
		for g := 2; g <= groupCount; g++ {
			if len(distribution[g]) < len(distribution[target]) {
				target = g
			}
		}
		distribution[target] = append(distribution[target], id)
	}
	return distribution, nil
}

// ValidateDistribution checks a distribution against the invariants the
// progression engine relies on: no empty group, every input team assigned
// exactly once, max-min group size difference of at most 1, and no more
// groups than requested. Callers must treat a failed validation as fatal.
func ValidateDistribution(distribution map[int][]int, teamIDs []int, requestedGroups int) (bool, []string) {
	var problems []string

	if len(distribution) > requestedGroups {
		problems = append(problems, fmt.Sprintf("distribution has %d groups, only %d were requested", len(distribution), requestedGroups))
	}

	groupIDs := make([]int, 0, len(distribution))
	for g := range distribution {
		groupIDs = append(groupIDs, g)
	}
	sort.Ints(groupIDs)

	assigned := make(map[int]int, len(teamIDs))
	minSize, maxSize := -1, -1
	for _, g := range groupIDs {
		members := distribution[g]
		if len(members) == 0 {
			problems = append(problems, fmt.Sprintf("group %d is empty", g))
			continue
		}
		if minSize == -1 || len(members) < minSize {
			minSize = len(members)
		}
		if len(members) > maxSize {
			maxSize = len(members)
		}
		for _, id := range members {
			assigned[id]++
		}
	}

	if minSize != -1 && maxSize-minSize > 1 {
		problems = append(problems, fmt.Sprintf("group sizes differ by %d, at most 1 is allowed", maxSize-minSize))
	}

	for _, id := range teamIDs {
		switch assigned[id] {
		case 0:
			problems = append(problems, fmt.Sprintf("team %d is not assigned to any group", id))
		case 1:
		default:
			problems = append(problems, fmt.Sprintf("team %d is assigned %d times", id, assigned[id]))
		}
	}
	for id := range assigned {
		found := false
		for _, original := range teamIDs {
			if original == id {
				found = true
				break
			}
		}
		if !found {
			problems = append(problems, fmt.Sprintf("team %d was assigned but is not in the original list", id))
		}
	}

	return len(problems) == 0, problems
}
