package service

import (
	"testing"

	"stridelab/internal/store"
)

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func TestEstimateCalories(t *testing.T) {
	profile := &store.AthleteProfile{
		AthleteID: 42,
		WeightKg:  floatPtr(70),
		Age:       intPtr(35),
	}

	tests := []struct {
		name     string
		session  store.Session
		profile  *store.AthleteProfile
		expected *float64
	}{
		{
			name:     "power meter work wins",
			session:  store.Session{Kilojoules: floatPtr(512.4), AverageHeartrate: floatPtr(150), MovingTime: 3600},
			profile:  profile,
			expected: floatPtr(512),
		},
		{
			name:    "heart rate regression",
			session: store.Session{AverageHeartrate: floatPtr(150), MovingTime: 3600},
			profile: profile,
			// (-55.0969 + 0.6309*150 + 0.1988*70 + 0.2017*35)/4.184 kcal/min over 60 min
			expected: floatPtr(868),
		},
		{
			name:     "no heart rate, no estimate",
			session:  store.Session{MovingTime: 3600},
			profile:  profile,
			expected: nil,
		},
		{
			name:     "profile missing weight",
			session:  store.Session{AverageHeartrate: floatPtr(150), MovingTime: 3600},
			profile:  &store.AthleteProfile{AthleteID: 42, Age: intPtr(35)},
			expected: nil,
		},
		{
			name:     "nil profile",
			session:  store.Session{AverageHeartrate: floatPtr(150), MovingTime: 3600},
			profile:  nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateCalories(&tt.session, tt.profile)
			if tt.expected == nil {
				if result != nil {
					t.Errorf("EstimateCalories() = %v, want nil", *result)
				}
				return
			}
			if result == nil {
				t.Fatalf("EstimateCalories() = nil, want %v", *tt.expected)
			}
			if *result != *tt.expected {
				t.Errorf("EstimateCalories() = %v, want %v", *result, *tt.expected)
			}
		})
	}
}
