package domain

import (
	"time"

	"gorm.io/gorm"
)

// State is the review state of a join request.
type State string

const (
	StateNew            State = "new"
	StateRejected       State = "rejected"
	StateRejectedMailed State = "rejected-and-emailed"
	StateApproved       State = "approved"
	StateApprovedMailed State = "approved-and-emailed"
)

// States lists every known state in workflow order.
var States = []State{StateNew, StateRejected, StateRejectedMailed, StateApproved, StateApprovedMailed}

var transitions = map[State][]State{
	StateNew:      {StateRejected, StateApproved},
	StateRejected: {StateRejectedMailed},
	StateApproved: {StateApprovedMailed},
}

// CanTransition reports whether an application may move from one state to another.
// Transitions only move forward; mailed states are terminal.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseState maps a URL segment to a state. The empty segment means StateNew.
func ParseState(s string) (State, bool) {
	if s == "" {
		return StateNew, true
	}
	for _, st := range States {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether the workflow has nothing left to do for this state.
func (s State) Terminal() bool {
	return s == StateRejectedMailed || s == StateApprovedMailed
}

// Application is a join request submitted through the public form.
type Application struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	Email     string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Reason    string    `gorm:"column:reason;type:text" json:"reason"`
	State     State     `gorm:"column:state;type:varchar(32);not null;index" json:"state"`
}

func (Application) TableName() string {
	return "applications"
}

// BeforeCreate defaults new rows to StateNew.
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.State == "" {
		a.State = StateNew
	}
	return nil
}
