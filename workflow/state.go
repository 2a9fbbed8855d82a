package workflow

import (
	"fmt"

	"github.com/BaSui01/onboardflow/types"
)

// StateKind 工作流状态类型
type StateKind string

const (
	StateIdle                  StateKind = "Idle"
	StateAwaitingInputMethod   StateKind = "AwaitingInputMethod"
	StateCollectingManualField StateKind = "CollectingManualField"
	StateAwaitingExtraction    StateKind = "AwaitingExtraction"
	StateReviewingDraft        StateKind = "ReviewingDraft"
	StateCommitted             StateKind = "Committed"
	StateFailed                StateKind = "Failed"
)

// State 工作流状态。Field 只在 CollectingManualField 下有值，Reason 只在 Failed 下有值。
type State struct {
	Kind   StateKind   `json:"kind"`
	Field  types.Field `json:"field,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

func Idle() State                { return State{Kind: StateIdle} }
func AwaitingInputMethod() State { return State{Kind: StateAwaitingInputMethod} }
func AwaitingExtraction() State  { return State{Kind: StateAwaitingExtraction} }
func ReviewingDraft() State      { return State{Kind: StateReviewingDraft} }
func Committed() State           { return State{Kind: StateCommitted} }

func CollectingManualField(f types.Field) State {
	return State{Kind: StateCollectingManualField, Field: f}
}

func Failed(reason string) State {
	return State{Kind: StateFailed, Reason: reason}
}

func (s State) String() string {
	switch s.Kind {
	case StateCollectingManualField:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Field)
	case StateFailed:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Reason)
	}
	return string(s.Kind)
}

// Is 判断状态类型
func (s State) Is(k StateKind) bool { return s.Kind == k }

// HasDraft 该状态下是否持有草稿
func (s State) HasDraft() bool {
	switch s.Kind {
	case StateIdle, StateCommitted:
		return false
	}
	return true
}

// validTransitions 定义合法的状态转换，停留在原状态总是合法的
var validTransitions = map[StateKind][]StateKind{
	StateIdle:                  {StateAwaitingInputMethod},
	StateAwaitingInputMethod:   {StateAwaitingExtraction, StateCollectingManualField, StateIdle},
	StateAwaitingExtraction:    {StateReviewingDraft, StateAwaitingInputMethod, StateCollectingManualField, StateIdle},
	StateCollectingManualField: {StateReviewingDraft, StateIdle},
	StateReviewingDraft:        {StateCommitted, StateFailed, StateCollectingManualField, StateIdle},
	StateCommitted:             {StateAwaitingInputMethod, StateReviewingDraft, StateIdle},
	StateFailed:                {StateCommitted, StateReviewingDraft, StateCollectingManualField, StateAwaitingInputMethod, StateIdle},
}

// CanTransition 检查状态转换是否合法
func CanTransition(from, to StateKind) bool {
	if from == to {
		return true
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition 非法状态转换错误
type ErrInvalidTransition struct {
	From State
	To   State
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}
