package scheduler

import (
	"errors"
	"testing"
)

func TestRankCandidatesOrdering(t *testing.T) {
	options := []StationOption{
		{StationID: "st-weld", Priority: 1},
		{StationID: "st-backup", Priority: 2},
	}
	workers := []CandidateWorker{
		{
			WorkerID:        "w2",
			Code:            "W002",
			Operations:      map[string]bool{"WELD": true},
			StationPriority: map[string]int{"st-weld": 2, "st-backup": 1},
		},
		{
			WorkerID:        "w1",
			Code:            "W001",
			Operations:      map[string]bool{"WELD": true},
			StationPriority: map[string]int{"st-weld": 1},
		},
	}

	pairs, err := RankCandidates("WELD", options, workers)
	if err != nil {
		t.Fatalf("RankCandidates failed: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	// 节点首选工站优先；同工站内工人侧优先级小者先
	if pairs[0].WorkerID != "w1" || pairs[0].StationID != "st-weld" {
		t.Errorf("pairs[0] = %+v, want w1@st-weld", pairs[0])
	}
	if pairs[1].WorkerID != "w2" || pairs[1].StationID != "st-weld" {
		t.Errorf("pairs[1] = %+v, want w2@st-weld", pairs[1])
	}
	if pairs[2].WorkerID != "w2" || pairs[2].StationID != "st-backup" {
		t.Errorf("pairs[2] = %+v, want w2@st-backup", pairs[2])
	}
}

func TestRankCandidatesTieBreakByWorkerCode(t *testing.T) {
	options := []StationOption{{StationID: "st-1", Priority: 1}}
	workers := []CandidateWorker{
		{WorkerID: "wb", Code: "W200", Operations: map[string]bool{"CUT": true}, StationPriority: map[string]int{"st-1": 1}},
		{WorkerID: "wa", Code: "W100", Operations: map[string]bool{"CUT": true}, StationPriority: map[string]int{"st-1": 1}},
	}

	pairs, err := RankCandidates("CUT", options, workers)
	if err != nil {
		t.Fatalf("RankCandidates failed: %v", err)
	}
	if pairs[0].WorkerCode != "W100" {
		t.Errorf("expected W100 first, got %s", pairs[0].WorkerCode)
	}
}

func TestRankCandidatesFiltersUnqualified(t *testing.T) {
	options := []StationOption{{StationID: "st-1", Priority: 1}}
	workers := []CandidateWorker{
		// 有资质但未绑定工站
		{WorkerID: "w1", Code: "W001", Operations: map[string]bool{"WELD": true}, StationPriority: map[string]int{}},
		// 绑定工站但无资质
		{WorkerID: "w2", Code: "W002", Operations: map[string]bool{"CUT": true}, StationPriority: map[string]int{"st-1": 1}},
	}

	_, err := RankCandidates("WELD", options, workers)
	if !errors.Is(err, ErrNoEligibleResource) {
		t.Errorf("expected ErrNoEligibleResource, got %v", err)
	}
}

func TestRankCandidatesNoOptions(t *testing.T) {
	workers := []CandidateWorker{
		{WorkerID: "w1", Code: "W001", Operations: map[string]bool{"WELD": true}, StationPriority: map[string]int{"st-1": 1}},
	}
	_, err := RankCandidates("WELD", nil, workers)
	if !errors.Is(err, ErrNoEligibleResource) {
		t.Errorf("expected ErrNoEligibleResource, got %v", err)
	}
}

func TestPickSubstation(t *testing.T) {
	cases := []struct {
		name   string
		subs   []SubstationState
		wantID string
		wantOK bool
	}{
		{
			name: "lowest priority wins",
			subs: []SubstationState{
				{SubstationID: "s2", Priority: 2, Available: true},
				{SubstationID: "s1", Priority: 1, Available: true},
			},
			wantID: "s1",
			wantOK: true,
		},
		{
			name: "skips unavailable",
			subs: []SubstationState{
				{SubstationID: "s1", Priority: 1, Available: false},
				{SubstationID: "s2", Priority: 2, Available: true},
			},
			wantID: "s2",
			wantOK: true,
		},
		{
			name: "equal priority picks stable id",
			subs: []SubstationState{
				{SubstationID: "sb", Priority: 1, Available: true},
				{SubstationID: "sa", Priority: 1, Available: true},
			},
			wantID: "sa",
			wantOK: true,
		},
		{
			name: "none available",
			subs: []SubstationState{
				{SubstationID: "s1", Priority: 1, Available: false},
			},
			wantOK: false,
		},
		{
			name:   "empty",
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := PickSubstation(tc.subs)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && id != tc.wantID {
				t.Errorf("id = %s, want %s", id, tc.wantID)
			}
		})
	}
}
