package model

import (
	"fmt"
	"time"
)

// Task is the goal driving a character's automation.
type Task uint8

const (
	TaskNone Task = iota
	TaskHunting
	TaskMining
	TaskWoodcutting
	TaskFishing
)

var taskNames = [...]string{
	TaskNone:        "none",
	TaskHunting:     "hunting",
	TaskMining:      "mining",
	TaskWoodcutting: "woodcutting",
	TaskFishing:     "fishing",
}

func (t Task) String() string {
	if int(t) < len(taskNames) {
		return taskNames[t]
	}
	return fmt.Sprintf("task(%d)", uint8(t))
}

func ParseTask(s string) (Task, error) {
	for i, name := range taskNames {
		if name == s {
			return Task(i), nil
		}
	}
	return TaskNone, fmt.Errorf("unknown task %q", s)
}

// Skill returns the gathering skill a task trains. Hunting and none train no skill.
func (t Task) Skill() (Skill, bool) {
	switch t {
	case TaskMining:
		return SkillMining, true
	case TaskWoodcutting:
		return SkillWoodcutting, true
	case TaskFishing:
		return SkillFishing, true
	case TaskNone, TaskHunting:
		return 0, false
	}
	return 0, false
}

// Skill is one of the gathering skills.
type Skill uint8

const (
	SkillMining Skill = iota + 1
	SkillWoodcutting
	SkillFishing
)

var AllSkills = []Skill{SkillMining, SkillWoodcutting, SkillFishing}

func (s Skill) String() string {
	switch s {
	case SkillMining:
		return "mining"
	case SkillWoodcutting:
		return "woodcutting"
	case SkillFishing:
		return "fishing"
	}
	return fmt.Sprintf("skill(%d)", uint8(s))
}

func ParseSkill(s string) (Skill, error) {
	for _, sk := range AllSkills {
		if sk.String() == s {
			return sk, nil
		}
	}
	return 0, fmt.Errorf("unknown skill %q", s)
}

// Phase is the automation progress state.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseFindingTarget
	PhaseWalkingToTarget
	PhaseActing
	PhaseWaitingForAvailability
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseFindingTarget:
		return "FINDING_TARGET"
	case PhaseWalkingToTarget:
		return "WALKING_TO_TARGET"
	case PhaseActing:
		return "ACTING"
	case PhaseWaitingForAvailability:
		return "WAITING_FOR_AVAILABILITY"
	}
	return fmt.Sprintf("PHASE(%d)", uint8(p))
}

// AutomationState is the per-character automation sub-state.
type AutomationState struct {
	Active bool
	Task   Task
	// Resource narrows a gathering task to one resource type; empty means any type of the skill.
	Resource string
	Phase    Phase

	// TargetID is a monster id while hunting or a node key while gathering.
	TargetID  string
	TargetPos Pos

	// Progress accumulates ACTING time toward the resource interval.
	Progress time.Duration
	// RetryAt gates re-planning after an unreachable target.
	RetryAt time.Duration
}
