package domain

import (
	"strconv"
	"strings"
)

// Session represents one conversation between a user and the agent.
type Session struct {
	ID        SessionID
	UserID    UserID
	Title     string
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// ToolInvocation records one tool call made while processing a turn.
// Err is set only when the call failed; the payload the model saw in that
// case is the error payload, not Result.
type ToolInvocation struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
	Result map[string]any `json:"result,omitempty"`
	Err    string         `json:"error,omitempty"`
}

// Turn is one user utterance and its complete derived response, including
// any tool calls. Turns are immutable once appended to history.
type Turn struct {
	ID          TurnID
	SessionID   SessionID
	Utterance   string
	Response    string
	Invocations []ToolInvocation
	CreatedAt   Timestamp
}

// Extraction is the structured output of ingredient/constraint extraction.
type Extraction struct {
	Ingredients        []string `json:"ingredients"`
	DietaryConstraints []string `json:"dietary_constraints"`
}

// IsEmpty reports whether nothing was extracted.
func (e Extraction) IsEmpty() bool {
	return len(e.Ingredients) == 0 && len(e.DietaryConstraints) == 0
}

// PreferenceSet is the accumulated, session-scoped user constraints inferred
// from the conversation. Later deltas merge into it: dietary restrictions
// union, the scalar fields are last-write-wins when the delta supplies a
// non-empty value.
type PreferenceSet struct {
	DietaryRestrictions []string
	Cuisine             string
	MaxTimeMinutes      int
	MaxDifficulty       Difficulty
}

// IsEmpty reports whether the set carries no constraint at all.
func (p PreferenceSet) IsEmpty() bool {
	return len(p.DietaryRestrictions) == 0 &&
		p.Cuisine == "" &&
		p.MaxTimeMinutes == 0 &&
		p.MaxDifficulty == ""
}

// Summary renders the preferences as a short context line for the model.
// Returns "" when there is nothing to say.
func (p PreferenceSet) Summary() string {
	var parts []string
	if len(p.DietaryRestrictions) > 0 {
		parts = append(parts, "Dietary restrictions: "+strings.Join(p.DietaryRestrictions, ", "))
	}
	if p.Cuisine != "" {
		parts = append(parts, "Preferred cuisine: "+p.Cuisine)
	}
	if p.MaxTimeMinutes > 0 {
		parts = append(parts, "Max cooking time: "+strconv.Itoa(p.MaxTimeMinutes)+" minutes")
	}
	if p.MaxDifficulty != "" {
		parts = append(parts, "Difficulty up to: "+string(p.MaxDifficulty))
	}
	return strings.Join(parts, "; ")
}

// MergePreferences folds delta into base and returns the result: dietary
// restrictions are unioned preserving first-seen order, the remaining fields
// are overwritten only when delta supplies a non-empty value. Merging an
// empty delta is a no-op.
func MergePreferences(base, delta PreferenceSet) PreferenceSet {
	out := PreferenceSet{
		Cuisine:        base.Cuisine,
		MaxTimeMinutes: base.MaxTimeMinutes,
		MaxDifficulty:  base.MaxDifficulty,
	}

	seen := make(map[string]bool, len(base.DietaryRestrictions)+len(delta.DietaryRestrictions))
	for _, r := range base.DietaryRestrictions {
		if r != "" && !seen[r] {
			seen[r] = true
			out.DietaryRestrictions = append(out.DietaryRestrictions, r)
		}
	}
	for _, r := range delta.DietaryRestrictions {
		if r != "" && !seen[r] {
			seen[r] = true
			out.DietaryRestrictions = append(out.DietaryRestrictions, r)
		}
	}

	if delta.Cuisine != "" {
		out.Cuisine = delta.Cuisine
	}
	if delta.MaxTimeMinutes > 0 {
		out.MaxTimeMinutes = delta.MaxTimeMinutes
	}
	if delta.MaxDifficulty != "" {
		out.MaxDifficulty = delta.MaxDifficulty
	}

	return out
}
