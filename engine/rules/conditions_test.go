package rules

import (
	"testing"

	"github.com/nathoo/glyphcore/engine/catalog"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

func condTestState() (*types.State, *state.Defs) {
	defs := &state.Defs{
		Content: types.ContentDef{Title: "Test"},
		Catalog: catalog.Standard(),
	}
	s := state.NewState(defs)
	s.Flags["effarig_unlocked"] = true
	s.Counters["realities"] = 50
	s.Values["ep_log10"] = 4000
	return s, defs
}

func TestEvalCondition(t *testing.T) {
	s, defs := condTestState()

	tests := []struct {
		name string
		cond types.Condition
		want bool
	}{
		{
			name: "flag_set: flag is true",
			cond: types.Condition{Type: "flag_set", Params: map[string]any{"flag": "effarig_unlocked"}},
			want: true,
		},
		{
			name: "flag_set: flag is unset",
			cond: types.Condition{Type: "flag_set", Params: map[string]any{"flag": "fabric15"}},
			want: false,
		},
		{
			name: "flag_not: flag is unset",
			cond: types.Condition{Type: "flag_not", Params: map[string]any{"flag": "fabric15"}},
			want: true,
		},
		{
			name: "flag_not: flag is true",
			cond: types.Condition{Type: "flag_not", Params: map[string]any{"flag": "effarig_unlocked"}},
			want: false,
		},
		{
			name: "flag_is: matches value",
			cond: types.Condition{Type: "flag_is", Params: map[string]any{"flag": "effarig_unlocked", "value": true}},
			want: true,
		},
		{
			name: "flag_is: does not match",
			cond: types.Condition{Type: "flag_is", Params: map[string]any{"flag": "effarig_unlocked", "value": false}},
			want: false,
		},
		{
			name: "counter_gt: passes",
			cond: types.Condition{Type: "counter_gt", Params: map[string]any{"counter": "realities", "value": 10}},
			want: true,
		},
		{
			name: "counter_gt: fails (equal)",
			cond: types.Condition{Type: "counter_gt", Params: map[string]any{"counter": "realities", "value": 50}},
			want: false,
		},
		{
			name: "counter_lt: passes with Lua number",
			cond: types.Condition{Type: "counter_lt", Params: map[string]any{"counter": "realities", "value": float64(100)}},
			want: true,
		},
		{
			name: "counter_lt: fails",
			cond: types.Condition{Type: "counter_lt", Params: map[string]any{"counter": "realities", "value": 10}},
			want: false,
		},
		{
			name: "value_gt: passes",
			cond: types.Condition{Type: "value_gt", Params: map[string]any{"value_name": "ep_log10", "value": 3999.5}},
			want: true,
		},
		{
			name: "value_gt: unset value fails",
			cond: types.Condition{Type: "value_gt", Params: map[string]any{"value_name": "missing", "value": -1.0}},
			want: false,
		},
		{
			name: "value_lt: passes",
			cond: types.Condition{Type: "value_lt", Params: map[string]any{"value_name": "ep_log10", "value": 5000}},
			want: true,
		},
		{
			name: "value_lt: fails",
			cond: types.Condition{Type: "value_lt", Params: map[string]any{"value_name": "ep_log10", "value": 4000}},
			want: false,
		},
		{
			name: "not: negates true",
			cond: types.Condition{
				Type:  "not",
				Inner: &types.Condition{Type: "flag_set", Params: map[string]any{"flag": "effarig_unlocked"}},
			},
			want: false,
		},
		{
			name: "not: negates false",
			cond: types.Condition{
				Type:  "not",
				Inner: &types.Condition{Type: "flag_set", Params: map[string]any{"flag": "fabric15"}},
			},
			want: true,
		},
		{
			name: "not: empty inner passes",
			cond: types.Condition{Type: "not"},
			want: true,
		},
		{
			name: "unknown condition type: false",
			cond: types.Condition{Type: "bogus"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvalCondition(tt.cond, s, defs)
			if got != tt.want {
				t.Errorf("EvalCondition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalAllConditions_AllPass(t *testing.T) {
	s, defs := condTestState()
	conds := []types.Condition{
		{Type: "flag_set", Params: map[string]any{"flag": "effarig_unlocked"}},
		{Type: "counter_gt", Params: map[string]any{"counter": "realities", "value": 1}},
	}
	if !EvalAllConditions(conds, s, defs) {
		t.Error("expected all conditions to pass")
	}
}

func TestEvalAllConditions_OneFails(t *testing.T) {
	s, defs := condTestState()
	conds := []types.Condition{
		{Type: "flag_set", Params: map[string]any{"flag": "effarig_unlocked"}},
		{Type: "flag_set", Params: map[string]any{"flag": "fabric15"}}, // fails
	}
	if EvalAllConditions(conds, s, defs) {
		t.Error("expected conditions to fail")
	}
}

func TestEvalAllConditions_Empty(t *testing.T) {
	s, defs := condTestState()
	if !EvalAllConditions(nil, s, defs) {
		t.Error("expected empty conditions to pass")
	}
}
