package domain

import (
	"fmt"
	"strings"
)

// Stage identifies one of the file operations of a run
type Stage int

const (
	StageWrite Stage = iota
	StageRead
	StageCopy
	StageLines
)

var stageNames = map[Stage]string{
	StageWrite: "write",
	StageRead:  "read",
	StageCopy:  "copy",
	StageLines: "lines",
}

// AllStages returns every stage in run order
func AllStages() []Stage {
	return []Stage{StageWrite, StageRead, StageCopy, StageLines}
}

// KnownStages returns the stage names joined for use in flag usage
func KnownStages() string {
	names := make([]string, 0, len(stageNames))
	for _, s := range AllStages() {
		names = append(names, s.String())
	}
	return strings.Join(names, ",")
}

// ParseStage returns the stage with the given name
func ParseStage(name string) (Stage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for stage, n := range stageNames {
		if n == name {
			return stage, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q, expected one of %s", name, KnownStages())
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s *Stage) Set(value string) error {
	stage, err := ParseStage(value)
	if err != nil {
		return err
	}
	*s = stage
	return nil
}

func (s *Stage) Type() string {
	return "stage"
}

// StageList is a comma separated list of stages usable as a flag value.
// Order is preserved and every stage may appear only once.
type StageList []Stage

func (l *StageList) String() string {
	names := make([]string, 0, len(*l))
	for _, s := range *l {
		names = append(names, s.String())
	}
	return strings.Join(names, ",")
}

func (l *StageList) Set(value string) error {
	var stages StageList
	seen := map[Stage]bool{}
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		stage, err := ParseStage(part)
		if err != nil {
			return err
		}
		if seen[stage] {
			return fmt.Errorf("stage %q listed more than once", stage)
		}
		seen[stage] = true
		stages = append(stages, stage)
	}
	if len(stages) == 0 {
		return fmt.Errorf("no stage given")
	}
	*l = stages
	return nil
}

func (l *StageList) Type() string {
	return "stages"
}
